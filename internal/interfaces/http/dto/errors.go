package dto

import "net/http"

// Error codes surfaced by the API. Domain errors carry these codes
// directly; the HTTP layer only maps them to status codes.
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
// Business-rule rejections on well-formed requests map to 422.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodePermissionDenied:  http.StatusForbidden,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeInternal:          http.StatusInternalServerError,

	// domain-specific codes
	"DUPLICATE_SKU":      http.StatusConflict,
	"LAST_ADMIN":         http.StatusUnprocessableEntity,
	"EMPTY_CART":         http.StatusUnprocessableEntity,
	"NOTHING_TO_RESTOCK": http.StatusUnprocessableEntity,
	"ALREADY_REMOVED":    http.StatusUnprocessableEntity,
	"UNKNOWN_TEMPLATE":   http.StatusNotFound,
	"TOKEN_EXPIRED":      http.StatusUnauthorized,
	"INVALID_TOKEN":      http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status for an error code. Field-level
// INVALID_* codes from domain constructors fall through to 400; anything
// unrecognized is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if len(code) > 8 && code[:8] == "INVALID_" {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
