package response

import (
	"fmt"
	"net/http"
	"strings"
)

// Error codes produced by this service.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidBody       = "INVALID_BODY_FORMAT"
	CodeInvalidUserID     = "INVALID_USER_ID_FORMAT"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeRouteNotFound     = "ROUTE_NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeMissingAPIKey     = "MISSING_API_KEY"
	CodeInvalidAPIKey     = "INVALID_API_KEY"
	CodeAuthConfig        = "AUTH_CONFIG_ERROR"
	CodeMissingAdmin      = "MISSING_ADMIN_SECRET"
	CodeInvalidAdmin      = "INVALID_ADMIN_SECRET"
	CodeAdminConfig       = "ADMIN_CONFIG_ERROR"
	CodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
	internalErrorMessage  = "An unexpected error occurred"
)

// Error is an API error with a machine-readable code.
// Its Status is derived from the code by StatusForCode.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error whose status follows the code taxonomy.
func New(code, message string, details any) *Error {
	return &Error{
		Status:  StatusForCode(code),
		Code:    code,
		Message: message,
		Details: details,
	}
}

// StatusForCode maps an error code to its HTTP status:
//
//	VALIDATION_ERROR, INVALID_*_FORMAT          -> 400
//	MISSING_*, INVALID_*_KEY, INVALID_*_SECRET  -> 401
//	*_NOT_FOUND                                 -> 404
//	METHOD_NOT_ALLOWED                          -> 405
//	CONFLICT                                    -> 409
//	PAYLOAD_TOO_LARGE                           -> 413
//	RATE_LIMIT_EXCEEDED                         -> 429
//	*_CONFIG_ERROR and anything else            -> 500
func StatusForCode(code string) int {
	switch {
	case code == CodeValidation:
		return http.StatusBadRequest
	case strings.HasPrefix(code, "INVALID_") && strings.HasSuffix(code, "_FORMAT"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "MISSING_"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "INVALID_") &&
		(strings.HasSuffix(code, "_KEY") || strings.HasSuffix(code, "_SECRET")):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case code == CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case code == CodeConflict:
		return http.StatusConflict
	case code == CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case code == CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationDetails is the details payload of VALIDATION_ERROR.
type ValidationDetails struct {
	Errors []FieldError `json:"errors"`
}

// Validation reports every violated constraint at once.
func Validation(message string, fields []FieldError) *Error {
	return New(CodeValidation, message, ValidationDetails{Errors: fields})
}

// InvalidBody reports a request body that is not valid JSON.
func InvalidBody() *Error {
	return New(CodeInvalidBody, "Request body must be a valid JSON object", nil)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return New(CodeConflict, message, nil)
}

// NotFound reports a missing resource under the given *_NOT_FOUND code.
func NotFound(code, message string) *Error {
	return New(code, message, nil)
}

// Internal is the opaque 500 error. It never carries internal detail.
func Internal() *Error {
	return New(CodeInternal, internalErrorMessage, nil)
}
