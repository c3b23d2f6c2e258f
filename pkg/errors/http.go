package errors

import (
	"net/http"
	"strings"
)

// HTTPStatusCode returns the appropriate HTTP status code for an error
func HTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	code := GetCode(err)
	return HTTPStatusFromCode(code)
}

// HTTPStatusFromCode returns the HTTP status for an error code
func HTTPStatusFromCode(code ErrorCode) int {
	switch code {
	case ErrCodeValidation,
		ErrCodeInvalidRequest,
		ErrCodeTransportInvalidJSON,
		ErrCodeTransportInvalidParams:
		return http.StatusBadRequest

	case ErrCodeAuthentication:
		return http.StatusUnauthorized

	case ErrCodeAuthorization,
		ErrCodeSecurity:
		return http.StatusForbidden

	case ErrCodeNotFound,
		ErrCodeTransportMethodNotFound:
		return http.StatusNotFound

	case ErrCodeTimeout:
		return http.StatusRequestTimeout

	case ErrCodeConflict:
		return http.StatusConflict

	case ErrCodeRateLimit:
		return http.StatusTooManyRequests

	case ErrCodeTransportMarshal:
		return http.StatusUnprocessableEntity

	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable

	case ErrCodeServer,
		ErrCodeAPIRequest,
		ErrCodeInternal,
		ErrCodeConfiguration,
		ErrCodePanic:
		return http.StatusInternalServerError

	default:
		// Try to infer from prefix
		codeStr := string(code)
		switch {
		case strings.HasPrefix(codeStr, "VALIDATION_"):
			return http.StatusBadRequest
		case strings.HasPrefix(codeStr, "TRANSPORT_"):
			return http.StatusBadRequest
		default:
			return http.StatusInternalServerError
		}
	}
}

// FromHTTPStatus maps an upstream Reltio status code to the error code the
// envelope should carry. Statuses with no dedicated code collapse to
// API_REQUEST_ERROR.
func FromHTTPStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeValidation
	case http.StatusUnauthorized:
		return ErrCodeAuthentication
	case http.StatusForbidden:
		return ErrCodeAuthorization
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return ErrCodeUnavailable
	case http.StatusInternalServerError:
		return ErrCodeServer
	default:
		return ErrCodeAPIRequest
	}
}

// HTTPError represents an HTTP-specific error response
type HTTPError struct {
	Status  int         `json:"status"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToHTTPError converts an error to an HTTP error response
func ToHTTPError(err error) HTTPError {
	if err == nil {
		return HTTPError{
			Status:  http.StatusOK,
			Message: "OK",
		}
	}

	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Internal(err)
	}

	return HTTPError{
		Status:  HTTPStatusFromCode(appErr.Code),
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}

// IsClientError returns true if the error is a client error (4xx)
func IsClientError(err error) bool {
	status := HTTPStatusCode(err)
	return status >= 400 && status < 500
}

// IsServerError returns true if the error is a server error (5xx)
func IsServerError(err error) bool {
	status := HTTPStatusCode(err)
	return status >= 500 && status < 600
}
