package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeInternal is used for unclassified server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes. Codes not
// listed here answer 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	"NOT_FOUND":        http.StatusNotFound,
	"TENANT_NOT_FOUND": http.StatusNotFound,
	"TENANT_INACTIVE":  http.StatusForbidden,

	"ALREADY_EXISTS":           http.StatusConflict,
	"DUPLICATE_INVOICE_NUMBER": http.StatusConflict,

	"INVALID_INPUT":     http.StatusBadRequest,
	"VALIDATION_FAILED": http.StatusBadRequest,

	"INVALID_STATE_TRANSITION":   http.StatusUnprocessableEntity,
	"EXTERNAL_SUBMISSION_FAILED": http.StatusUnprocessableEntity,

	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	"CONNECTION_FAILURE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
