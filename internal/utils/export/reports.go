// Package export renders financial reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// sheet appends rows to a single worksheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	bold int
	err  error
}

func newSheet(title string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), title); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &sheet{f: f, name: title, bold: bold}, nil
}

// add writes one row. Decimals are written as numbers with two places.
func (s *sheet) add(values ...any) {
	s.addStyled(false, values...)
}

func (s *sheet) heading(values ...any) {
	s.addStyled(true, values...)
}

func (s *sheet) addStyled(bold bool, values ...any) {
	if s.err != nil {
		return
	}
	s.row++
	row := make([]any, len(values))
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			row[i] = d.Round(2).InexactFloat64()
			continue
		}
		row[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetSheetRow(s.name, cell, &row); err != nil {
		s.err = err
		return
	}
	if bold && len(values) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(values), s.row)
		s.err = s.f.SetCellStyle(s.name, cell, end, s.bold)
	}
}

func (s *sheet) blank() {
	s.row++
}

func (s *sheet) writeTo(w io.Writer) error {
	defer s.f.Close()
	if s.err != nil {
		return fmt.Errorf("failed to build %s sheet: %w", s.name, s.err)
	}
	if err := s.f.SetColWidth(s.name, "A", "B", 28); err != nil {
		return err
	}
	return s.f.Write(w)
}

// TrialBalance writes the trial balance as a workbook.
func TrialBalance(w io.Writer, tb *domain.TrialBalance) error {
	s, err := newSheet("Trial Balance")
	if err != nil {
		return err
	}
	s.heading("Trial Balance as of", tb.AsOf.Format(dateLayout))
	s.blank()
	s.heading("Account", "Name", "Type", "Debit", "Credit")
	for _, r := range tb.Rows {
		s.add(r.AccountNumber, r.AccountName, string(r.AccountType), r.Debit, r.Credit)
	}
	s.heading("Total", "", "", tb.TotalDebits, tb.TotalCredits)
	s.add("Balanced", fmt.Sprint(tb.Balanced))
	return s.writeTo(w)
}

// IncomeStatement writes the income statement as a workbook.
func IncomeStatement(w io.Writer, is *domain.IncomeStatement) error {
	s, err := newSheet("Income Statement")
	if err != nil {
		return err
	}
	s.heading("Income Statement", is.From.Format(dateLayout)+" to "+is.To.Format(dateLayout))
	s.blank()
	section(s, "Revenue", is.Revenue, is.TotalRevenue)
	s.blank()
	section(s, "Expenses", is.Expenses, is.TotalExpenses)
	s.blank()
	s.heading("Net Income", "", is.NetIncome)
	return s.writeTo(w)
}

// BalanceSheet writes the balance sheet as a workbook.
func BalanceSheet(w io.Writer, bs *domain.BalanceSheet) error {
	s, err := newSheet("Balance Sheet")
	if err != nil {
		return err
	}
	s.heading("Balance Sheet as of", bs.AsOf.Format(dateLayout))
	s.blank()
	section(s, "Assets", bs.Assets, bs.TotalAssets)
	s.blank()
	section(s, "Liabilities", bs.Liabilities, bs.TotalLiabilities)
	s.blank()
	section(s, "Equity", bs.Equity, bs.TotalEquity)
	s.blank()
	s.heading("Total Liabilities and Equity", "", bs.TotalLiabilitiesAndEquity)
	s.add("Balanced", fmt.Sprint(bs.Balanced))
	return s.writeTo(w)
}

func section(s *sheet, title string, lines []domain.AccountAmount, total decimal.Decimal) {
	s.heading(title)
	for _, l := range lines {
		s.add(l.AccountNumber, l.Name, l.NetAmount)
	}
	s.heading("Total "+title, "", total)
}
