package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// SSETransport splits the JSON-RPC exchange across two endpoints: requests
// arrive as POSTs on /rpc and are acknowledged with 202, responses stream
// back over the client's long-lived /events connection. Clients must open
// the event stream first to obtain a session ID.
type SSETransport struct {
	config      *config.TransportSettings
	handler     RequestHandler
	sessions    *SessionManager
	logger      *slog.Logger
	interceptor *logging.RequestInterceptor

	mu      sync.RWMutex
	server  *http.Server
	streams map[string]*sseStream
}

// sseStream is one connected /events client.
type sseStream struct {
	sessionID string
	responses chan *JSONRPCResponse
	done      chan struct{}
}

// NewSSETransport builds the SSE transport from its settings block.
func NewSSETransport(cfg *config.TransportSettings) *SSETransport {
	logger := logging.GetGlobalLogger("transport.sse")
	return &SSETransport{
		config:      cfg,
		sessions:    NewSessionManager(sessionIdleTimeout),
		logger:      logger,
		interceptor: logging.NewRequestInterceptor(logger),
		streams:     make(map[string]*sseStream),
	}
}

// Start serves /rpc, /events, and /health until the context is cancelled.
func (t *SSETransport) Start(ctx context.Context, handler RequestHandler) error {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", t.handleRPC)
	mux.HandleFunc("/events", t.handleEvents)
	mux.HandleFunc("/health", t.handleHealth)

	var h http.Handler = mux
	h = t.interceptor.HTTPMiddleware(h)
	if t.config.EnableCORS {
		h = corsMiddleware(h, "Content-Type, X-Session-ID, Last-Event-ID")
	}

	addr := fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  time.Duration(t.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(t.config.WriteTimeout) * time.Second,
	}
	t.mu.Lock()
	t.server = server
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "SSE transport starting",
		slog.String("address", addr),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.ErrorContext(ctx, "SSE server error",
				slog.String("error", err.Error()),
			)
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.logger.InfoContext(ctx, "SSE transport context cancelled")
		return t.Stop(context.Background())
	case err := <-errChan:
		return err
	}
}

// Stop disconnects every stream and shuts the listener down.
func (t *SSETransport) Stop(ctx context.Context) error {
	t.mu.Lock()
	for _, stream := range t.streams {
		close(stream.done)
	}
	server := t.server
	t.mu.Unlock()

	if server == nil {
		return nil
	}
	t.sessions.Stop()
	err := server.Shutdown(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "SSE server shutdown failed",
			slog.String("error", err.Error()),
		)
		return err
	}
	t.logger.InfoContext(ctx, "SSE transport stopped")
	return nil
}

func (t *SSETransport) Name() string { return "sse" }

// handleRPC accepts a request for an established session. The 202 tells the
// client to watch its event stream for the actual response.
func (t *SSETransport) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, errResp, status := readRPCBody(r)
	if errResp != nil {
		writeJSON(w, errResp, status)
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		writeJSON(w, CreateFallbackErrorResponse(nil, "X-Session-ID header required"), http.StatusBadRequest)
		return
	}
	if _, ok := t.sessions.GetSession(sessionID); !ok {
		writeJSON(w, CreateFallbackErrorResponse(nil, "Invalid or expired session"), http.StatusUnauthorized)
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		t.deliver(sessionID, NewParseError())
		w.WriteHeader(http.StatusAccepted)
		return
	}

	t.mu.RLock()
	handler := t.handler
	t.mu.RUnlock()

	t.deliver(sessionID, handler(r.Context(), req))

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"accepted"}`))
}

// handleEvents runs one client's event stream: session handshake, queued
// responses, and heartbeats.
func (t *SSETransport) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, CreateFallbackErrorResponse(nil, "SSE not supported"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Proxies must not buffer the stream.
	w.Header().Set("X-Accel-Buffering", "no")

	sessionID := r.Header.Get("X-Session-ID")
	if _, ok := t.sessions.GetSession(sessionID); !ok {
		session, err := t.sessions.CreateSession(t.Name())
		if err != nil {
			t.logger.ErrorContext(ctx, "failed to create SSE session",
				slog.String("error", err.Error()),
			)
			t.sendEvent(w, flusher, "error", ToJSONRPCResponse(nil, err))
			return
		}
		sessionID = session.ID
		fmt.Fprintf(w, "event: session\ndata: {\"sessionId\":%q}\n\n", sessionID)
		flusher.Flush()
	}

	stream := &sseStream{
		sessionID: sessionID,
		responses: make(chan *JSONRPCResponse, 100),
		done:      make(chan struct{}),
	}

	t.mu.Lock()
	t.streams[sessionID] = stream
	total := len(t.streams)
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "SSE client connected",
		slog.String("session_id", sessionID),
		slog.Int("total_clients", total),
	)

	defer func() {
		t.mu.Lock()
		delete(t.streams, sessionID)
		remaining := len(t.streams)
		t.mu.Unlock()
		t.logger.InfoContext(ctx, "SSE client disconnected",
			slog.String("session_id", sessionID),
			slog.Int("remaining_clients", remaining),
		)
	}()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	if lastEventID := r.Header.Get("Last-Event-ID"); lastEventID != "" {
		fmt.Fprintf(w, "event: reconnected\ndata: {\"lastEventId\":%q}\n\n", lastEventID)
		flusher.Flush()
	}

	heartbeat := time.NewTicker(time.Duration(t.config.SSEHeartbeatSecs) * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stream.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ":heartbeat\n\n")
			flusher.Flush()
		case resp := <-stream.responses:
			if resp != nil {
				t.sendEvent(w, flusher, "message", resp)
			}
		}
	}
}

func (t *SSETransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	clients := len(t.streams)
	t.mu.RUnlock()
	writeHealth(w, t.Name(), map[string]interface{}{"clients": clients})
}

// deliver queues a response onto the session's event stream. A session with
// no open stream, or a full queue, drops the response.
func (t *SSETransport) deliver(sessionID string, resp *JSONRPCResponse) {
	t.mu.RLock()
	stream, ok := t.streams[sessionID]
	t.mu.RUnlock()
	if !ok {
		t.logger.Warn("no event stream for session, dropping response",
			slog.String("session_id", sessionID),
		)
		return
	}

	select {
	case stream.responses <- resp:
	default:
		t.logger.Warn("event queue full, dropping response",
			slog.String("session_id", sessionID),
		)
	}
}

func (t *SSETransport) sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, resp *JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: {\"error\":\"Failed to serialize response\"}\n\n")
		flusher.Flush()
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
