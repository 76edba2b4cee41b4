package statement

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	in := "Amount,Date,Reference,Description\n" +
		"\"30,000.00\",2024-03-05,INV-2024-000001,Transfer from A-101\n" +
		",,,\n" +
		"(150.50),2024/03/06,FEE,Bank charges\n"

	entries, err := Parse(FormatCSV, strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("30000")))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "INV-2024-000001", entries[0].Reference)
	assert.Equal(t, "Transfer from A-101", entries[0].Description)
	assert.True(t, entries[1].Amount.Equal(decimal.RequireFromString("-150.50")))
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), entries[1].Date)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "empty"},
		{"missing headers", "date,amount\n2024-03-05,10\n", "missing required headers"},
		{"bad date", "date,reference,amount\n05.03.2024,X,10\n", "row 2"},
		{"bad amount", "date,reference,amount\n2024-03-05,X,ten\n", "invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(FormatCSV, strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"date", "description", "reference", "amount"},
		{"2024-03-05", "Transfer", "INV-2024-000002", "12500.25"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	entries, err := Parse(FormatXLSX, &buf)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INV-2024-000002", entries[0].Reference)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("12500.25")))
}

func TestFormatFromFilename(t *testing.T) {
	f, err := FormatFromFilename("March.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromFilename("/tmp/march.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromFilename("march.pdf")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
