package domain

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable marks failures of the ledger or item store that a
// caller may retry with backoff.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ValidationError reports a caller-supplied parameter outside its allowed range.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s parameter: %s", e.Param, e.Message)
}

// NewValidationError builds a ValidationError for param.
func NewValidationError(param, message string) *ValidationError {
	return &ValidationError{Param: param, Message: message}
}

// DataAccessError wraps a failed read from the ledger or item store together
// with the stage that failed.
type DataAccessError struct {
	Stage  string
	ItemID int64
	Err    error
}

func (e *DataAccessError) Error() string {
	if e.ItemID != 0 {
		return fmt.Sprintf("data access failed at %s (item %d): %v", e.Stage, e.ItemID, e.Err)
	}
	return fmt.Sprintf("data access failed at %s: %v", e.Stage, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure came from an unavailable upstream.
func (e *DataAccessError) Retryable() bool {
	return errors.Is(e.Err, ErrUpstreamUnavailable)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
