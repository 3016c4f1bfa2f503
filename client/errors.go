package client

import "fmt"

// Fixed messages for statuses where the server body is never trusted.
const (
	msgNetwork     = "Unable to connect to the server. Please check your connection."
	msgAuth        = "Authentication required. Please log in again."
	msgUnavailable = "Service temporarily unavailable. Please try again later."
	msgFallback    = "An unexpected error occurred. Please try again."
)

// genericMessages are the per-status fallbacks used when the response body
// carries no usable detail string.
var genericMessages = map[int]string{
	400: "Bad request. Please check your input.",
	403: "You do not have permission to perform this action.",
	404: "The requested resource was not found.",
	422: "Validation failed. Please check your input.",
	500: "Internal server error. Please try again later.",
}

// Error is the structured failure shape every request resolves to. Status 0
// means the request never reached the server. Body holds the parsed response
// body, or the raw-text fallback when the body was not JSON.
type Error struct {
	Status           int
	Message          string
	URL              string
	Body             map[string]interface{}
	ValidationErrors []map[string]interface{}
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsValidation reports whether the error is a request validation failure.
func (e *Error) IsValidation() bool { return e.Status == 400 || e.Status == 422 }

// IsPermission reports whether the server refused the caller's role.
func (e *Error) IsPermission() bool { return e.Status == 403 }

// IsNotFound reports whether the target resource does not exist.
func (e *Error) IsNotFound() bool { return e.Status == 404 }

// IsAuth reports whether the failure should trigger re-authentication.
func (e *Error) IsAuth() bool { return e.Status == 401 || e.Status == 403 }

// newHTTPError maps a non-success response onto the error taxonomy.
//   - 401 and 503 carry fixed messages regardless of body content
//   - 400/403/404/422/500 prefer a string "detail" from the body
//   - a 422 list detail is preserved for field-level display
func newHTTPError(status int, url string, body map[string]interface{}) *Error {
	e := &Error{Status: status, URL: url, Body: body}

	switch status {
	case 401:
		e.Message = msgAuth
		return e
	case 503:
		e.Message = msgUnavailable
		return e
	}

	generic, known := genericMessages[status]
	if !known {
		e.Message = msgFallback
		return e
	}
	e.Message = generic

	switch detail := body["detail"].(type) {
	case string:
		if detail != "" {
			e.Message = detail
		}
	case []interface{}:
		if status == 422 {
			for _, item := range detail {
				if m, ok := item.(map[string]interface{}); ok {
					e.ValidationErrors = append(e.ValidationErrors, m)
				}
			}
		}
	default:
		// Some servers use "error" instead of "detail" for the message key.
		if msg, ok := body["error"].(string); ok && msg != "" {
			e.Message = msg
		}
	}

	return e
}
