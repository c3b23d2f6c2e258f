package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/internal/tools"
	"github.com/reltio-open/reltio-mcp-server/internal/transport"
	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
	"github.com/reltio-open/reltio-mcp-server/pkg/mcp"
)

// protocolVersion is the MCP revision answered to initialize requests.
const protocolVersion = "2024-11-05"

// Server dispatches JSON-RPC 2.0 requests to the tool registry. It is
// transport-agnostic: every transport hands decoded requests to Handle.
type Server struct {
	registry   *tools.Registry
	serverName string
	logger     *slog.Logger
}

// New builds the dispatcher over a tool registry.
func New(cfg *config.Settings, registry *tools.Registry) *Server {
	return &Server{
		registry:   registry,
		serverName: cfg.ServerName,
		logger:     logging.GetGlobalLogger("server"),
	}
}

// validateRequest checks the JSON-RPC framing and returns an error response
// if the request is malformed. Notifications (no id, notifications/ prefix)
// are allowed through.
func (s *Server) validateRequest(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	if req == nil {
		return transport.NewInvalidRequestError(nil, "Request cannot be null")
	}
	if req.JSONRPC != "2.0" {
		return transport.NewInvalidRequestError(req.ID, "Invalid or missing 'jsonrpc' field, must be '2.0'")
	}
	if req.Method == "" {
		return transport.NewInvalidRequestError(req.ID, "Missing or empty 'method' field")
	}
	if req.ID == nil && !strings.HasPrefix(req.Method, "notifications/") {
		return transport.NewInvalidRequestError(nil, "Missing 'id' field - only notifications/* may omit it")
	}
	return nil
}

// Handle processes one JSON-RPC request. It always returns a response;
// notifications get an empty one that carries no result and no error.
func (s *Server) Handle(ctx context.Context, req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	if resp := s.validateRequest(req); resp != nil {
		return resp
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return result(req.ID, map[string]interface{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		if strings.HasPrefix(req.Method, "notifications/") {
			// Acknowledged but not acted upon.
			return &transport.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
		}
		return transport.NewMethodNotFoundError(req.ID, req.Method)
	}
}

// handleInitialize answers the MCP handshake with the minimum the clients
// need: protocol revision, a tools capability, and the server identity.
func (s *Server) handleInitialize(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	return result(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.serverName,
			"version": "1.0.0",
		},
	})
}

func (s *Server) handleToolsList(req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	defs := s.registry.HandleListTools()
	listed := make([]mcp.Tool, 0, len(defs))
	for _, def := range defs {
		listed = append(listed, mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: inputSchema(def.Parameters),
		})
	}
	return result(req.ID, map[string]interface{}{"tools": listed})
}

// inputSchema builds a permissive JSON schema from a parameter name list.
// The executor revalidates everything, so the schema only has to name the
// accepted properties for the model.
func inputSchema(params []string) map[string]interface{} {
	properties := make(map[string]interface{}, len(params))
	for _, p := range params {
		properties[p] = map[string]interface{}{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *transport.JSONRPCRequest) *transport.JSONRPCResponse {
	if req.Params == nil {
		return invalidParams(req.ID, "Missing 'params' field for tools/call method")
	}

	rawName, ok := req.Params["name"]
	if !ok {
		return invalidParams(req.ID, "Missing 'name' field in params")
	}
	toolName, ok := rawName.(string)
	if !ok {
		return invalidParams(req.ID, "Field 'name' must be a string")
	}
	if toolName == "" {
		return invalidParams(req.ID, "Field 'name' cannot be empty")
	}

	arguments := make(map[string]interface{})
	if rawArgs, exists := req.Params["arguments"]; exists && rawArgs != nil {
		argsMap, ok := rawArgs.(map[string]interface{})
		if !ok {
			return invalidParams(req.ID, "Field 'arguments' must be an object")
		}
		arguments = argsMap
	}

	payload, err := s.registry.HandleCallTool(ctx, toolName, arguments)
	if err != nil {
		return transport.ToJSONRPCResponse(req.ID, err)
	}
	return result(req.ID, wrapToolResult(payload))
}

// wrapToolResult converts a tool payload into an MCP call result. Strings
// (the YAML renderings) pass through as-is; structured payloads are
// serialized to JSON; error envelopes additionally flip the isError flag.
func wrapToolResult(payload interface{}) *mcp.CallToolResult {
	switch v := payload.(type) {
	case string:
		return mcp.NewTextResult(v)
	case errors.ErrorEnvelope:
		text, err := json.Marshal(v)
		if err != nil {
			return mcp.NewErrorResult(v.Error.Message)
		}
		return mcp.NewErrorResult(string(text))
	default:
		text, err := json.Marshal(v)
		if err != nil {
			wrapped := errors.Wrap(err, errors.ErrCodeTransportMarshal, "Failed to serialize tool result")
			envelope, merr := json.Marshal(errors.Envelope(wrapped))
			if merr != nil {
				return mcp.NewErrorResult("Failed to serialize tool result")
			}
			return mcp.NewErrorResult(string(envelope))
		}
		return mcp.NewTextResult(string(text))
	}
}

func result(id interface{}, payload interface{}) *transport.JSONRPCResponse {
	return &transport.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  payload,
	}
}

func invalidParams(id interface{}, data string) *transport.JSONRPCResponse {
	return &transport.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &transport.JSONRPCError{
			Code:    transport.InvalidParams,
			Message: "Invalid params",
			Data:    data,
		},
	}
}
