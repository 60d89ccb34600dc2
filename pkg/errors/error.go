// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown errors
//   - Input validation errors (100-199): Invalid series, periods, missing OHLC fields
//   - Data/Resource errors (200-299): Price source failures, cache and query failures
//   - Indicator errors (300-399): Technical indicator calculation errors
//   - Analysis errors (400-499): Composition and result decoding errors
//   - Market data errors (700-799): Timeframe, provider and price kind errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidSeries, "series must not be empty")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeInvalidPeriod, "period must be between 2 and %d, got %d", n, period)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodePriceFetchFailed, "failed to fetch klines", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeInvalidPeriod) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so callers can compare
// against a bare New(code, "") value with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// An InsufficientDataError reports ErrCodeInsufficientData.
// Returns ErrCodeUnknown for any other error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError represents an error when there is not enough data
// for a calculation (e.g., an indicator window longer than the series).
type InsufficientDataError struct {
	Required  int    // Minimum bars required
	Actual    int    // Bars available
	Indicator string // Optional: indicator context
	Message   string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, indicator, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required:  required,
		Actual:    actual,
		Indicator: indicator,
		Message:   message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, indicator, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required:  required,
		Actual:    actual,
		Indicator: indicator,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
