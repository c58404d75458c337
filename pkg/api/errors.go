package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeAuthentication  ErrorType = "authentication_error"
	ErrorTypePermission      ErrorType = "permission_error"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeServerError     ErrorType = "server_error"
)

// Error codes carried in APIError.Code.
const (
	CodeValidation        = "validation_error"
	CodeMissingCredential = "missing_credential"
	CodeInvalidCredential = "invalid_credential"
	CodeRateLimited       = "rate_limit_exceeded"
	CodeOverloaded        = "server_overloaded"
)

// APIError represents a structured API error with type, code, param, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for a request that could not be decoded.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewValidationError creates an APIError for a field that is missing or out of range.
func NewValidationError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Code:    CodeValidation,
		Param:   param,
		Message: message,
	}
}

// NewAuthenticationError creates an APIError for an absent credential.
func NewAuthenticationError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeAuthentication,
		Code:    CodeMissingCredential,
		Message: message,
	}
}

// NewPermissionError creates an APIError for a credential that did not match.
func NewPermissionError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypePermission,
		Code:    CodeInvalidCredential,
		Message: message,
	}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError(code, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}
