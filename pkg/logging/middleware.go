package logging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"
)

// RequestInterceptor logs the lifecycle of requests passing through a
// transport.
type RequestInterceptor struct {
	logger *slog.Logger
}

func NewRequestInterceptor(logger *slog.Logger) *RequestInterceptor {
	return &RequestInterceptor{logger: logger}
}

// HTTPMiddleware logs every HTTP request with its correlation ID, status,
// and duration, and converts handler panics into a 500.
func (r *RequestInterceptor) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		operation := fmt.Sprintf("%s %s", req.Method, req.URL.Path)
		ctx := NewRequestContext(req.Context(), operation)
		req = req.WithContext(ctx)
		requestID := GetRequestID(ctx)

		r.logger.InfoContext(ctx, "HTTP request started",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("remote_addr", req.RemoteAddr),
			slog.String("request_id", requestID),
		)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if recovered := recover(); recovered != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				r.logger.ErrorContext(ctx, "HTTP request panicked",
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("request_id", requestID),
					slog.Duration("duration", time.Since(start)),
					slog.Any("panic", recovered),
					slog.String("stack_trace", string(buf[:n])),
				)
				if !wrapped.headerWritten {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(wrapped, req)

		attrs := []any{
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("request_id", requestID),
			slog.Int("status_code", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)),
		}
		if wrapped.statusCode >= 400 {
			r.logger.WarnContext(ctx, "HTTP request failed", attrs...)
		} else {
			r.logger.InfoContext(ctx, "HTTP request completed", attrs...)
		}
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.headerWritten = true
	}
	return rw.ResponseWriter.Write(b)
}

// OperationTimer measures one named operation and logs its outcome.
type OperationTimer struct {
	logger    *slog.Logger
	operation string
	start     time.Time
	ctx       context.Context
}

// StartTimer begins timing an operation, minting a request ID if the
// context carries none.
func StartTimer(ctx context.Context, logger *slog.Logger, operation string) *OperationTimer {
	if GetRequestID(ctx) == "" {
		ctx = NewRequestContext(ctx, operation)
	}
	return &OperationTimer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		ctx:       ctx,
	}
}

// End logs the operation as completed and returns its duration.
func (t *OperationTimer) End() time.Duration {
	return t.EndWithError(nil)
}

// EndWithError logs the operation outcome, failed or completed, and
// returns its duration.
func (t *OperationTimer) EndWithError(err error) time.Duration {
	duration := time.Since(t.start)
	attrs := []any{
		slog.String("operation", t.operation),
		slog.String("request_id", GetRequestID(t.ctx)),
		slog.Duration("duration", duration),
	}
	if err != nil {
		t.logger.ErrorContext(t.ctx, "operation failed",
			append(attrs, slog.String("error", err.Error()))...)
		return duration
	}
	t.logger.DebugContext(t.ctx, "operation completed", attrs...)
	return duration
}
