package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// maxLineBytes bounds a single stdio request line. Tool arguments can carry
// whole filter expressions and update payloads, so the default scanner
// buffer is far too small.
const maxLineBytes = 10 * 1024 * 1024

// StdioTransport speaks newline-delimited JSON-RPC over stdin/stdout. This
// is the transport MCP hosts such as Claude Desktop spawn the server with,
// which is why all logging goes to stderr.
type StdioTransport struct {
	in      io.Reader
	running bool
	logger  *slog.Logger
}

// NewStdioTransport builds the stdio transport reading from os.Stdin.
func NewStdioTransport() *StdioTransport {
	return &StdioTransport{
		in:     os.Stdin,
		logger: logging.GetGlobalLogger("transport.stdio"),
	}
}

// Start reads requests line by line until stdin closes or the context is
// cancelled.
func (t *StdioTransport) Start(ctx context.Context, handler RequestHandler) error {
	t.running = true
	t.logger.InfoContext(ctx, "stdio transport starting")

	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for t.running && scanner.Scan() {
		select {
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "stdio transport context cancelled")
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reqCtx := logging.NewRequestContext(ctx, "HandleStdioRequest")

		req, err := ParseRequest([]byte(line))
		if err != nil {
			t.logger.ErrorContext(reqCtx, "request is not valid JSON",
				slog.String("error", err.Error()),
			)
			parseErr := errors.Wrap(err, errors.ErrCodeTransportInvalidJSON, "Invalid JSON format")
			t.write(reqCtx, ToJSONRPCResponse(nil, parseErr))
			continue
		}

		start := time.Now()
		resp := handler(reqCtx, req)
		t.logRequest(reqCtx, req, resp, time.Since(start))
		t.write(reqCtx, resp)
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		t.logger.ErrorContext(ctx, "stdin read failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("reading stdin: %w", err)
	}

	t.logger.InfoContext(ctx, "stdio transport stopped")
	return nil
}

// Stop makes the read loop exit after the current request.
func (t *StdioTransport) Stop(ctx context.Context) error {
	t.running = false
	return nil
}

func (t *StdioTransport) Name() string { return "stdio" }

func (t *StdioTransport) logRequest(ctx context.Context, req *JSONRPCRequest, resp *JSONRPCResponse, took time.Duration) {
	attrs := []any{
		slog.String("method", req.Method),
		slog.Any("id", req.ID),
		slog.Duration("duration", took),
	}
	if resp.Error != nil {
		t.logger.WarnContext(ctx, "request failed",
			append(attrs, slog.String("error", resp.Error.Message))...)
		return
	}
	t.logger.InfoContext(ctx, "request completed", attrs...)
}

// write emits one response line on stdout. A response that cannot be
// serialized degrades to a marshal error, then to a hardcoded fallback.
func (t *StdioTransport) write(ctx context.Context, resp *JSONRPCResponse) {
	raw, err := json.Marshal(resp)
	if err == nil {
		fmt.Println(string(raw))
		return
	}

	t.logger.ErrorContext(ctx, "response failed to marshal",
		slog.Any("response_id", resp.ID),
		slog.String("error", err.Error()),
	)

	marshalErr := errors.Wrap(err, errors.ErrCodeTransportMarshal, "Failed to serialize response")
	if raw, err := json.Marshal(ToJSONRPCResponse(resp.ID, marshalErr)); err == nil {
		fmt.Println(string(raw))
		return
	}
	if raw, err := json.Marshal(CreateFallbackErrorResponse(resp.ID, "Critical serialization error")); err == nil {
		fmt.Println(string(raw))
	}
}
