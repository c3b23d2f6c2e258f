package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a standardized error code
type ErrorCode string

// Error codes carried on tool error envelopes and transport responses.
const (
	// Client-side errors
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeSecurity       ErrorCode = "SECURITY_ERROR"
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization  ErrorCode = "AUTHORIZATION_ERROR"
	ErrCodeNotFound       ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeConflict       ErrorCode = "CONFLICT_ERROR"
	ErrCodeRateLimit      ErrorCode = "RATE_LIMIT_ERROR"

	// Upstream / server-side errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT_ERROR"
	ErrCodeAPIRequest  ErrorCode = "API_REQUEST_ERROR"
	ErrCodeServer      ErrorCode = "SERVER_ERROR"
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Transport errors (JSON-RPC layer, never serialized into tool envelopes)
	ErrCodeTransportInvalidJSON    ErrorCode = "TRANSPORT_INVALID_JSON"
	ErrCodeTransportMethodNotFound ErrorCode = "TRANSPORT_METHOD_NOT_FOUND"
	ErrCodeTransportInvalidParams  ErrorCode = "TRANSPORT_INVALID_PARAMS"
	ErrCodeTransportMarshal        ErrorCode = "TRANSPORT_MARSHAL"

	// System errors
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodePanic         ErrorCode = "PANIC_RECOVERED"
)

// NumericCode returns the stable integer published alongside each code in
// error envelopes. Unknown codes collapse to 500.
func NumericCode(code ErrorCode) int {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidRequest:
		return 400
	case ErrCodeAuthentication:
		return 401
	case ErrCodeAuthorization, ErrCodeSecurity:
		return 403
	case ErrCodeNotFound:
		return 404
	case ErrCodeTimeout:
		return 408
	case ErrCodeConflict:
		return 409
	case ErrCodeRateLimit:
		return 429
	case ErrCodeUnavailable:
		return 503
	default:
		return 500
	}
}

// AppError represents a standardized application error
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Internal error       `json:"-"` // Internal error not exposed to clients
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// ToJSON returns a JSON representation safe for clients
func (e *AppError) ToJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}

	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is checks if an error has a specific error code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Code == code
}

// IsAny checks if an error matches any of the provided codes
func IsAny(err error, codes ...ErrorCode) bool {
	for _, code := range codes {
		if Is(err, code) {
			return true
		}
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrCodeInternal
	}

	return appErr.Code
}

// GetMessage returns a safe message for the client
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return "An internal error occurred"
	}

	return appErr.Message
}

// GetInternal returns the internal error for logging
func GetInternal(err error) error {
	if err == nil {
		return nil
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return err
	}

	if appErr.Internal != nil {
		return appErr.Internal
	}

	return appErr
}

// Validation creates a validation error for a named field
func Validation(field, reason string) *AppError {
	return Newf(ErrCodeValidation, "%s is invalid: %s", field, reason).
		WithDetails(map[string]interface{}{"field": field})
}

// NotFound creates a resource-not-found error
func NotFound(resource string) *AppError {
	return Newf(ErrCodeNotFound, "%s not found", resource).
		WithDetails(map[string]interface{}{"resource": resource})
}

// Internal creates an internal error with a safe message
func Internal(internalErr error) *AppError {
	return Wrap(internalErr, ErrCodeInternal, "An internal error occurred")
}

// Internalf creates an internal error with formatted safe message
func Internalf(internalErr error, format string, args ...interface{}) *AppError {
	return Wrap(internalErr, ErrCodeInternal, fmt.Sprintf(format, args...))
}
