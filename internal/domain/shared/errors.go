package shared

import "errors"

// ErrorKind classifies domain errors into the categories the billing engine
// reacts to differently: validation failures reject before any write,
// conflicts are retryable after resolution (and mean "skip" to the
// scheduler), state errors reject operations invalid for the current
// lifecycle status, and integrity errors require manual operator correction.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION"
	KindConflict      ErrorKind = "CONFLICT"
	KindState         ErrorKind = "STATE"
	KindDataIntegrity ErrorKind = "DATA_INTEGRITY"
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindInternal      ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for missing or malformed input
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewConflictError creates an error for operations colliding with existing state
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewStateError creates an error for operations invalid in the current lifecycle state
func NewStateError(code, message string) *DomainError {
	return NewDomainError(KindState, code, message)
}

// NewDataIntegrityError creates an error for corrupted or inconsistent stored data
func NewDataIntegrityError(code, message string) *DomainError {
	return NewDomainError(KindDataIntegrity, code, message)
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError(KindState, "INVALID_STATE", "Operation not allowed in current state")
)

// kindOf extracts the ErrorKind of err, or KindInternal for non-domain errors
func kindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsConflict reports whether err is a conflict error. The auto-billing
// scheduler treats conflicts as silent skips rather than failures.
func IsConflict(err error) bool { return kindOf(err) == KindConflict }

// IsState reports whether err is a lifecycle-state error
func IsState(err error) bool { return kindOf(err) == KindState }

// IsDataIntegrity reports whether err is a data-integrity error
func IsDataIntegrity(err error) bool { return kindOf(err) == KindDataIntegrity }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }
