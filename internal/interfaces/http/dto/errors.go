package dto

import "net/http"

// Wire error codes. Domain error codes pass through unchanged so clients
// see the same vocabulary the services use.
const (
	// ErrCodeValidation marks malformed or out-of-range input
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound marks a referenced entity that does not exist
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeCrossReference marks a referential mismatch between entities
	ErrCodeCrossReference = "CROSS_REFERENCE"
	// ErrCodeConcurrencyConflict marks an atomic unit that could not commit
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeBadRequest is used for unparseable requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeCrossReference:      http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
