package shared

import (
	"errors"
	"fmt"
)

// Error taxonomy codes. Every domain error carries exactly one of these.
const (
	// CodeValidation marks malformed or out-of-range input. Always a caller
	// defect, never retried automatically.
	CodeValidation = "VALIDATION_ERROR"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound = "NOT_FOUND"
	// CodeCrossReference marks a referential mismatch, e.g. a batch that
	// belongs to a different product than stated.
	CodeCrossReference = "CROSS_REFERENCE"
	// CodeConcurrency marks an atomic unit that could not commit due to
	// contention. Safe to retry the whole operation from scratch.
	CodeConcurrency = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports code equality so sentinel errors work with errors.Is
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a NOT_FOUND with a formatted message
func NewNotFoundError(format string, args ...any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf(format, args...))
}

// NewCrossReferenceError creates a CROSS_REFERENCE with a formatted message
func NewCrossReferenceError(format string, args ...any) *DomainError {
	return NewDomainError(CodeCrossReference, fmt.Sprintf(format, args...))
}

// ErrorCode extracts the taxonomy code from an error chain, or "" if the
// chain contains no DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrency, "Resource was modified by another process")
)
