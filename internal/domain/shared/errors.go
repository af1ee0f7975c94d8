package shared

import "errors"

// DomainError represents a domain-level error with a stable classification code.
// Expected business rejections (insufficient due amount, inactive customer, ...)
// are returned as DomainError values, never panics.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrOperationFailed     = NewDomainError("OPERATION_FAILED", "Operation could not be completed")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// CodeOf extracts the classification code from an error chain.
// Non-domain errors are classified as OPERATION_FAILED.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrOperationFailed.Code
}

// IsNotFound reports whether err classifies as a missing resource
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound.Code
}

// IsInvalidInput reports whether err classifies as a rejected input
func IsInvalidInput(err error) bool {
	code := CodeOf(err)
	return code == ErrInvalidInput.Code || code == ErrAlreadyExists.Code
}

// IsConcurrencyConflict reports whether err classifies as an optimistic-lock failure
func IsConcurrencyConflict(err error) bool {
	return CodeOf(err) == ErrConcurrencyConflict.Code
}
