package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the format RS-<AREA>-<NNNN>, where the leading digit of
// NNNN groups the error class (4 = caller, 5 = invariant or engine).
type DomainError struct {
	Code    string // Error code (e.g., "RS-REF-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two domain errors match when their
// codes are equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsFatal reports whether err is an invariant violation (value mismatch,
// corrupt record) or a transaction failure. Callers usually log these and
// stop using the store rather than retry.
func IsFatal(err error) bool {
	switch {
	case errors.Is(err, ErrValueMismatch),
		errors.Is(err, ErrCorruptRecord),
		errors.Is(err, ErrTxnBegin),
		errors.Is(err, ErrTxnCommit),
		errors.Is(err, ErrTxnFinished):
		return true
	}
	return false
}

// ============================================================================
// Reference Errors (REF)
// ============================================================================

var (
	// ErrInvalidKey indicates an empty hash key.
	ErrInvalidKey = NewDomainError("RS-REF-4000", "invalid hash key")

	// ErrNotFound indicates the key has no live record.
	ErrNotFound = NewDomainError("RS-REF-4040", "record not found")

	// ErrValueMismatch indicates a save supplied a value that differs from
	// the one already stored under the same hash key.
	ErrValueMismatch = NewDomainError("RS-REF-4090", "value does not match stored value for hash key")

	// ErrCountOverflow indicates the reference count cannot grow further.
	ErrCountOverflow = NewDomainError("RS-REF-4091", "reference count overflow")
)

// ============================================================================
// Record Errors (REC)
// ============================================================================

var (
	// ErrCorruptRecord indicates stored bytes too short to hold a count.
	ErrCorruptRecord = NewDomainError("RS-REC-5000", "corrupt record")
)

// ============================================================================
// Transaction Errors (TXN)
// ============================================================================

var (
	// ErrTxnBegin indicates the engine could not begin a transaction.
	ErrTxnBegin = NewDomainError("RS-TXN-5000", "begin transaction failed")

	// ErrTxnCommit indicates the engine rejected a commit.
	ErrTxnCommit = NewDomainError("RS-TXN-5001", "commit transaction failed")

	// ErrTxnFinished indicates a transaction was used after commit or discard.
	ErrTxnFinished = NewDomainError("RS-TXN-5002", "transaction already finished")
)
