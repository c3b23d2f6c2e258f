package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// maxBodyBytes bounds an RPC request body on the networked transports.
const maxBodyBytes = 10 * 1024 * 1024

// sessionIdleTimeout is how long a session survives without traffic.
const sessionIdleTimeout = 30 * time.Minute

// HTTPTransport serves JSON-RPC over plain HTTP POST. Responses travel in
// the POST body; the X-Session-ID header correlates calls from one client.
type HTTPTransport struct {
	config      *config.TransportSettings
	server      *http.Server
	handler     RequestHandler
	sessions    *SessionManager
	logger      *slog.Logger
	interceptor *logging.RequestInterceptor
}

// NewHTTPTransport builds the HTTP transport from its settings block.
func NewHTTPTransport(cfg *config.TransportSettings) *HTTPTransport {
	logger := logging.GetGlobalLogger("transport.http")
	return &HTTPTransport{
		config:      cfg,
		sessions:    NewSessionManager(sessionIdleTimeout),
		logger:      logger,
		interceptor: logging.NewRequestInterceptor(logger),
	}
}

// Start serves /rpc and /health until the context is cancelled.
func (t *HTTPTransport) Start(ctx context.Context, handler RequestHandler) error {
	t.handler = handler

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", t.handleRPC)
	mux.HandleFunc("/health", t.handleHealth)

	var h http.Handler = mux
	h = t.interceptor.HTTPMiddleware(h)
	if t.config.EnableCORS {
		h = corsMiddleware(h, "Content-Type, X-Session-ID")
	}

	addr := fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)
	t.server = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  time.Duration(t.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(t.config.WriteTimeout) * time.Second,
	}

	t.logger.InfoContext(ctx, "HTTP transport starting",
		slog.String("address", addr),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.ErrorContext(ctx, "HTTP server error",
				slog.String("error", err.Error()),
			)
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.logger.InfoContext(ctx, "HTTP transport context cancelled")
		return t.Stop(context.Background())
	case err := <-errChan:
		return err
	}
}

// Stop drains in-flight requests and shuts the listener down.
func (t *HTTPTransport) Stop(ctx context.Context) error {
	if t.server == nil {
		return nil
	}
	t.sessions.Stop()
	err := t.server.Shutdown(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "HTTP server shutdown failed",
			slog.String("error", err.Error()),
		)
		return err
	}
	t.logger.InfoContext(ctx, "HTTP transport stopped")
	return nil
}

func (t *HTTPTransport) Name() string { return "http" }

func (t *HTTPTransport) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, errResp, status := readRPCBody(r)
	if errResp != nil {
		writeJSON(w, errResp, status)
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		t.logger.WarnContext(ctx, "request is not valid JSON",
			slog.String("error", err.Error()),
		)
		// Parse errors are JSON-RPC level, so the HTTP status stays 200.
		writeJSON(w, NewParseError(), http.StatusOK)
		return
	}

	// Resume the caller's session, or start one. An expired ID is replaced
	// silently; the client picks the new ID up from the response header.
	sessionID := r.Header.Get("X-Session-ID")
	if _, ok := t.sessions.GetSession(sessionID); !ok {
		session, err := t.sessions.CreateSession(t.Name())
		if err != nil {
			writeJSON(w, ToJSONRPCResponse(req.ID, err), ToHTTPStatusCode(err))
			return
		}
		sessionID = session.ID
	}
	w.Header().Set("X-Session-ID", sessionID)

	start := time.Now()
	resp := t.handler(ctx, req)
	took := time.Since(start)

	if resp.Error != nil {
		t.logger.WarnContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.Any("id", req.ID),
			slog.String("session_id", sessionID),
			slog.Duration("duration", took),
			slog.String("error", resp.Error.Message),
		)
	} else {
		t.logger.InfoContext(ctx, "request completed",
			slog.String("method", req.Method),
			slog.Any("id", req.ID),
			slog.String("session_id", sessionID),
			slog.Duration("duration", took),
		)
	}

	writeJSON(w, resp, statusForResponse(resp))
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, t.Name(), nil)
}

// readRPCBody validates the method and content type of an RPC request and
// reads its body. On failure it returns the error response to send and its
// HTTP status.
func readRPCBody(r *http.Request) ([]byte, *JSONRPCResponse, int) {
	if r.Method != http.MethodPost {
		return nil, CreateFallbackErrorResponse(nil, "Method not allowed"), http.StatusMethodNotAllowed
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" && contentType != "application/json-rpc" {
		return nil, CreateFallbackErrorResponse(nil,
			"Content-Type must be application/json or application/json-rpc"), http.StatusBadRequest
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, CreateFallbackErrorResponse(nil, "Failed to read request body"), http.StatusBadRequest
	}
	return body, nil, 0
}

// statusForResponse derives the HTTP status for a finished JSON-RPC
// response. Application errors ride inside a 200; only transport-level
// failures surface as HTTP errors.
func statusForResponse(resp *JSONRPCResponse) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	if data, ok := resp.Error.Data.(map[string]interface{}); ok {
		if code, ok := data["error_code"].(string); ok {
			return ToHTTPStatusCode(&errors.AppError{Code: errors.ErrorCode(code)})
		}
	}
	return http.StatusOK
}

// writeJSON encodes a JSON-RPC response onto the wire. Encoding failures
// fall back to a minimal hardcoded error body.
func writeJSON(w http.ResponseWriter, resp *JSONRPCResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fallback := CreateFallbackErrorResponse(resp.ID, "Failed to encode response")
		if raw, merr := json.Marshal(fallback); merr == nil {
			w.Write(raw)
		}
	}
}

func writeHealth(w http.ResponseWriter, transport string, extra map[string]interface{}) {
	health := map[string]interface{}{
		"status":    "healthy",
		"transport": transport,
		"timestamp": time.Now().Unix(),
	}
	for k, v := range extra {
		health[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// corsMiddleware answers preflights and marks every response as
// cross-origin readable. The session header is exposed so browser clients
// can persist it.
func corsMiddleware(next http.Handler, allowHeaders string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Expose-Headers", "X-Session-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
