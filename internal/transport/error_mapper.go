package transport

import (
	"fmt"
	"net/http"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/mcp"
)

// ToJSONRPCError maps internal AppError codes to JSON-RPC error codes.
func ToJSONRPCError(err error) mcp.Error {
	if err == nil {
		return mcp.Error{}
	}

	code := errors.GetCode(err)
	message := errors.GetMessage(err)

	var jsonRPCCode int
	switch code {
	// Transport layer errors use the reserved JSON-RPC range.
	case errors.ErrCodeTransportMethodNotFound:
		jsonRPCCode = -32601
	case errors.ErrCodeTransportInvalidParams:
		jsonRPCCode = -32602
	case errors.ErrCodeTransportInvalidJSON, errors.ErrCodeTransportMarshal:
		jsonRPCCode = -32700

	// Request validation maps to Invalid params.
	case errors.ErrCodeValidation, errors.ErrCodeInvalidRequest:
		jsonRPCCode = -32602

	// System failures map to Internal error.
	case errors.ErrCodeInternal, errors.ErrCodePanic, errors.ErrCodeConfiguration,
		errors.ErrCodeTimeout, errors.ErrCodeUnavailable:
		jsonRPCCode = -32603

	// Application errors use the custom -32000..-32099 range.
	case errors.ErrCodeNotFound:
		jsonRPCCode = -32001
	case errors.ErrCodeConflict:
		jsonRPCCode = -32003
	case errors.ErrCodeAuthentication:
		jsonRPCCode = -32004
	case errors.ErrCodeAuthorization, errors.ErrCodeSecurity:
		jsonRPCCode = -32005
	default:
		jsonRPCCode = -32000
	}

	return mcp.Error{
		Code:    jsonRPCCode,
		Message: message,
		Data:    map[string]interface{}{"error_code": string(code)},
	}
}

// ToJSONRPCResponse creates a complete JSONRPCResponse carrying the error.
func ToJSONRPCResponse(id interface{}, err error) *JSONRPCResponse {
	if err == nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      id,
			Result:  map[string]interface{}{"success": true},
		}
	}

	mcpError := ToJSONRPCError(err)
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    mcpError.Code,
			Message: mcpError.Message,
			Data:    mcpError.Data,
		},
	}
}

// ToHTTPStatusCode maps error codes to HTTP status codes. Transport-level
// failures surface as HTTP errors; application-level errors ride inside an
// HTTP 200 JSON-RPC body.
func ToHTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeTransportInvalidJSON, errors.ErrCodeTransportMarshal:
		return http.StatusBadRequest
	case errors.ErrCodeTimeout:
		return http.StatusRequestTimeout
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrCodePanic, errors.ErrCodeConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// CreateFallbackErrorResponse creates a safe error response for critical
// failures, such as a response that itself failed to marshal.
func CreateFallbackErrorResponse(id interface{}, message string) *JSONRPCResponse {
	if message == "" {
		message = "An unexpected error occurred"
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    -32603,
			Message: message,
			Data:    map[string]interface{}{"error_code": "FALLBACK_ERROR"},
		},
	}
}

// SafeErrorMessage returns a client-safe error message without internal
// details.
func SafeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	message := errors.GetMessage(err)
	if message == "" {
		return "An internal error occurred"
	}
	return message
}

// LoggableError returns the full error details for logging, including the
// wrapped internal error.
func LoggableError(err error) error {
	if err == nil {
		return nil
	}
	if internal := errors.GetInternal(err); internal != nil {
		return fmt.Errorf("error_code=%s message=%s internal=%v",
			errors.GetCode(err), errors.GetMessage(err), internal)
	}
	return fmt.Errorf("error_code=%s message=%s",
		errors.GetCode(err), errors.GetMessage(err))
}
