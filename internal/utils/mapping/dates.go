// Package mapping converts transport DTOs into service inputs.
package mapping

import (
	"fmt"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ParseDate parses a wire date. field names the offending input in the error.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", apperrors.ErrValidation, field)
	}
	return t, nil
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
