package dto

// AsOfParams selects a point-in-time report date.
type AsOfParams struct {
	AsOf   string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// PeriodParams selects a report period.
type PeriodParams struct {
	From   string `form:"from" binding:"required,datetime=2006-01-02"`
	To     string `form:"to" binding:"required,datetime=2006-01-02"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}
