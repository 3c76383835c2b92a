package resp

import (
	"encoding/json"
	"net/http"

	"github.com/ncobase/todox/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// exception builds a failure Exception for the given status and code.
// An empty message falls back to the registered text for the code.
func exception(status, code int, message string, errs ...any) *Exception {
	e := &Exception{Status: status, Code: code, Message: message}
	if e.Message == "" {
		e.Message = ecode.Text(code)
	}
	if len(errs) > 0 {
		e.Errors = errs[0]
	}
	return e
}

// BadRequest builds a 400 response body.
func BadRequest(message string, errs ...any) *Exception {
	return exception(http.StatusBadRequest, ecode.RequestErr, message, errs...)
}

// UnAuthorized builds a 401 response body.
func UnAuthorized(message string, errs ...any) *Exception {
	return exception(http.StatusUnauthorized, ecode.NoLogin, message, errs...)
}

// Forbidden builds a 403 response body.
func Forbidden(message string, errs ...any) *Exception {
	return exception(http.StatusForbidden, ecode.AccessDenied, message, errs...)
}

// NotFound builds a 404 response body.
func NotFound(message string, errs ...any) *Exception {
	return exception(http.StatusNotFound, ecode.NotFound, message, errs...)
}

// Conflict builds a 409 response body.
func Conflict(message string, errs ...any) *Exception {
	return exception(http.StatusConflict, ecode.Conflict, message, errs...)
}

// UnprocessableEntity builds a 422 response body.
func UnprocessableEntity(message string, errs ...any) *Exception {
	return exception(http.StatusUnprocessableEntity, ecode.Unprocessable, message, errs...)
}

// InternalServer builds a 500 response body.
func InternalServer(message string, errs ...any) *Exception {
	return exception(http.StatusInternalServerError, ecode.ServerErr, message, errs...)
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var message string
	var responseData any

	if len(data) > 0 {
		responseData = data[0]
		if strData, ok := responseData.(string); ok {
			message = strData
			responseData = nil
		}
	}

	status, result := buildSuccessResponse(statusCode, message, responseData)
	writeJSON(w, status, result)
}

// buildSuccessResponse builds the success response.
func buildSuccessResponse(status int, message string, data any) (int, any) {
	if status == 0 {
		status = http.StatusOK
	}

	if data != nil {
		return status, data
	}

	if message == "" {
		message = "ok"
	}

	return status, map[string]any{"message": message}
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	statusCode, result := buildFailureResponse(r)
	writeJSON(w, statusCode, result)
}

// buildFailureResponse builds the failure response.
func buildFailureResponse(r *Exception) (int, any) {
	status := http.StatusBadRequest
	code := ecode.RequestErr
	message := ecode.Text(code)

	if r != nil {
		if r.Status != 0 {
			status = r.Status
		}
		if r.Code != 0 {
			code = r.Code
		}
		if r.Message != "" {
			message = r.Message
		}
	}

	body := &Exception{
		Code:    code,
		Message: message,
	}
	if r != nil {
		body.Errors = r.Errors
	}

	return status, body
}

// writeJSON writes the response body as JSON.
func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
