package dto

import "net/http"

// HTTP-layer error codes for failures that never reach the domain
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Lifecycle violations (wrong state, stale version, referential conflicts)
// all map to 409: the request was well-formed but the document's current
// state forbids it.
var errorCodeHTTPStatus = map[string]int{
	// Malformed input -> 400
	ErrCodeBadRequest:  http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_NUMBER":   http.StatusBadRequest,
	"INVALID_ITEM":     http.StatusBadRequest,
	"INVALID_CUSTOMER": http.StatusBadRequest,
	"INVALID_SUPPLIER": http.StatusBadRequest,
	"INVALID_INVOICE":  http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Missing resources and dangling references -> 404
	ErrCodeNotFound:       http.StatusNotFound,
	"REFERENCE_NOT_FOUND": http.StatusNotFound,

	// State and integrity conflicts -> 409
	"INVALID_TRANSITION":   http.StatusConflict,
	"IMMUTABLE_DOCUMENT":   http.StatusConflict,
	"ALREADY_SETTLED":      http.StatusConflict,
	"VOIDED_DOCUMENT":      http.StatusConflict,
	"NOT_ISSUED":           http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONFLICT":             http.StatusConflict,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
// Unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
