package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// NewAuditFields stamps creation and update fields with the same actor and time.
func NewAuditFields(userID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

// Touch updates the last-updated fields.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}

// Role is the caller's role as resolved by the authentication layer.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleViewer     Role = "VIEWER"
	RoleSystem     Role = "SYSTEM" // scheduled triggers and operator tooling
)

// Actor is an already-authenticated, already-authorized caller identity.
// The ledger records it but never re-derives permissions from it.
type Actor struct {
	UserID string `json:"userID"`
	Role   Role   `json:"role"`
}

// SystemActor is used by the billing trigger and the operator CLI.
var SystemActor = Actor{UserID: "system", Role: RoleSystem}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
