package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates a missing or invalid caller identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal is returned when an unexpected failure is hidden from the caller.
var ErrInternal = errors.New("internal error")

// Ledger invariant violations. These are rejected synchronously and nothing is persisted.
var (
	ErrUnbalancedEntry = errors.New("journal entry is not balanced")
	ErrAlreadyVoid     = errors.New("journal entry is already void")
	ErrOverpayment     = errors.New("payment exceeds bill balance")
)

// ErrConfiguration marks fatal setup problems (e.g. a missing system account).
// These must be surfaced to an operator and never retried silently.
var ErrConfiguration = errors.New("ledger configuration error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ConfigurationError lists the required system accounts (or settings) that could not be resolved.
type ConfigurationError struct {
	Missing []string
	Detail  string
}

// NewConfigurationError builds a ConfigurationError for the given missing keys.
func NewConfigurationError(detail string, missing ...string) *ConfigurationError {
	return &ConfigurationError{Missing: missing, Detail: detail}
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Detail)
	}
	return fmt.Sprintf("%s: %s (missing: %s)", ErrConfiguration.Error(), e.Detail, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
