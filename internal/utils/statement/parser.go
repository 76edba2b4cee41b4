// Package statement turns uploaded bank statement files into raw statement entries.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format is a supported statement file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Column headers, matched case-insensitively.
const (
	colDate        = "date"
	colDescription = "description"
	colReference   = "reference"
	colAmount      = "amount"
)

// Accepted date layouts. Spreadsheet exports commonly use the last two.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01-02-06",
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: unsupported statement file %q (expected .csv or .xlsx)", apperrors.ErrValidation, name)
}

// Parse reads every statement line from r. Blank rows are skipped; any malformed row fails the whole file.
func Parse(format Format, r io.Reader) ([]domain.RawStatementEntry, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported statement format %q", apperrors.ErrValidation, format)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv: %v", apperrors.ErrValidation, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// readXLSX reads the first sheet of the workbook.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", apperrors.ErrValidation, sheets[0], err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]domain.RawStatementEntry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: statement file is empty", apperrors.ErrValidation)
	}

	head := rows[0]
	idx := func(name string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	iDate, iDesc, iRef, iAmt := idx(colDate), idx(colDescription), idx(colReference), idx(colAmount)
	if iDate < 0 || iRef < 0 || iAmt < 0 {
		return nil, fmt.Errorf("%w: missing required headers (date, reference, amount[, description])", apperrors.ErrValidation)
	}

	cell := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	entries := make([]domain.RawStatementEntry, 0, len(rows)-1)
	for n, rec := range rows[1:] {
		line := n + 2 // 1-based, after the header
		if blank(rec) {
			continue
		}
		date, err := parseDate(cell(rec, iDate))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrValidation, line, err)
		}
		amount, err := parseAmount(cell(rec, iAmt))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrValidation, line, err)
		}
		entries = append(entries, domain.RawStatementEntry{
			Date:        date,
			Description: cell(rec, iDesc),
			Reference:   cell(rec, iRef),
			Amount:      amount,
		})
	}
	return entries, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (use YYYY-MM-DD)", s)
}

// parseAmount accepts thousands separators and a trailing or parenthesised minus.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	v := strings.ReplaceAll(s, ",", "")
	neg := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		v, neg = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")"), true
	}
	if strings.HasSuffix(v, "-") {
		v, neg = strings.TrimSuffix(v, "-"), true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
