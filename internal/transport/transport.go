package transport

import (
	"context"
	"encoding/json"
)

// JSONRPCRequest is a decoded JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set, except for notification acknowledgements which carry
// neither.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError is the error member of a JSON-RPC 2.0 response.
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RequestHandler processes one decoded request and always produces a
// response. Transports stay protocol-dumb: framing here, semantics there.
type RequestHandler func(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse

// Transport carries JSON-RPC traffic between a client and the handler.
type Transport interface {
	// Start blocks, feeding decoded requests to handler until the context
	// is cancelled or the transport fails.
	Start(ctx context.Context, handler RequestHandler) error

	// Stop shuts the transport down gracefully.
	Stop(ctx context.Context) error

	// Name identifies the transport in logs.
	Name() string
}

// Reserved JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// NewParseError builds the response for a request that was not valid JSON.
// The id is unknowable, so it is null per the JSON-RPC spec.
func NewParseError() *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      nil,
		Error: &JSONRPCError{
			Code:    ParseError,
			Message: "Parse error",
			Data:    "Invalid JSON format",
		},
	}
}

// NewInvalidRequestError builds a response for a structurally invalid
// request.
func NewInvalidRequestError(id interface{}, data string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    InvalidRequest,
			Message: "Invalid Request",
			Data:    data,
		},
	}
}

// NewMethodNotFoundError builds a response for an unsupported method.
func NewMethodNotFoundError(id interface{}, method string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    MethodNotFound,
			Message: "Method not found",
			Data:    "Method '" + method + "' is not supported",
		},
	}
}

// NewInternalError builds a response for a server-side failure.
func NewInternalError(id interface{}, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    InternalError,
			Message: "Internal error",
			Data:    message,
		},
	}
}

// ParseRequest decodes one JSON-RPC request from raw bytes.
func ParseRequest(data []byte) (*JSONRPCRequest, error) {
	var req JSONRPCRequest
	err := json.Unmarshal(data, &req)
	return &req, err
}
