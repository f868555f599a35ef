package domain

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when an authenticated call is attempted
// before API keys have been supplied.
var ErrMissingCredentials = errors.New("binance api credentials are not set")

// ValidationError rejects bad trade-intent input before it enters the ledger.
type ValidationError struct {
	Reason string
}

func (validationError *ValidationError) Error() string {
	return "validation failed: " + validationError.Reason
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConnectivityError reports a failed health check or feed connection.
type ConnectivityError struct {
	Err error
}

func (connectivityError *ConnectivityError) Error() string {
	return "exchange unreachable: " + connectivityError.Err.Error()
}

func (connectivityError *ConnectivityError) Unwrap() error {
	return connectivityError.Err
}
