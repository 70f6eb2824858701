// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// The shape matches the success envelope so the frontend can always read
// `success` and `message` first.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Success: false, Message: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Success: false, Message: "Error de validacion", Errors: fields}
}
