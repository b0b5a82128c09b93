// Package response writes the uniform JSON envelope shared by every endpoint.
//
// Success bodies look like
//
//	{"success": true, "data": ..., "message": "...", "timestamp": "..."}
//
// and error bodies like
//
//	{"success": false, "error": {"code": "...", "message": "...", "details": ...}, "timestamp": "..."}
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Envelope is the top-level response body.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorBody is the error member of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Success writes a success envelope with the given status.
func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: now(),
	})
}

// Fail writes err as an error envelope.
// Errors that are not *Error are reported as INTERNAL_SERVER_ERROR
// without exposing their text.
func Fail(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal()
	}

	JSON(w, apiErr.Status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
		Timestamp: now(),
	})
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
