package ecode

import (
	"fmt"
	"sync"
)

// Error codes follow a standardized numbering scheme: 0 is success,
// negative codes mirror the HTTP status they map to where one exists.
const (
	OK                 = 0
	NoLogin            = -101
	RequestErr         = -400
	ParamErr           = -401
	AccessDenied       = -403
	NotFound           = -404
	Conflict           = -409
	Unprocessable      = -422
	ServerErr          = -500
	ServiceUnavailable = -503
	Deadline           = -504
)

var (
	mu       sync.RWMutex
	messages = map[int]string{
		OK:                 "success",
		NoLogin:            "account not logged in",
		RequestErr:         "invalid request",
		ParamErr:           "invalid parameters",
		AccessDenied:       "access denied",
		NotFound:           "resource not found",
		Conflict:           "resource conflict",
		Unprocessable:      "validation failed",
		ServerErr:          "internal server error",
		ServiceUnavailable: "service unavailable",
		Deadline:           "deadline exceeded",
	}
)

// Text returns the human-readable message for a code.
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}

// Register adds or overrides the message for a custom code.
// Applications should keep custom codes in the -1000 and below range.
func Register(code int, message string) {
	mu.Lock()
	defer mu.Unlock()
	messages[code] = message
}

// ToHTTPStatus maps a business code to an HTTP status code.
func ToHTTPStatus(code int) int {
	switch code {
	case OK:
		return 200
	case NoLogin:
		return 401
	case RequestErr:
		return 400
	case ParamErr:
		return 400
	case AccessDenied:
		return 403
	case NotFound:
		return 404
	case Conflict:
		return 409
	case Unprocessable:
		return 422
	case ServiceUnavailable:
		return 503
	case Deadline:
		return 504
	default:
		return 500
	}
}

// FieldError reports a validation failure scoped to a single input field.
// Handlers unwrap it to attach the field name to the response.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
