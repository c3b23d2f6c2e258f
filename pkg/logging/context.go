package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Context keys for logging metadata
type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyTraceID   contextKey = "trace_id"
	contextKeyUserID    contextKey = "user_id"
	contextKeySessionID contextKey = "session_id"
	contextKeyOperation contextKey = "operation"
	contextKeyComponent contextKey = "component"
	contextKeyStartTime contextKey = "start_time"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if val := ctx.Value(contextKeyRequestID); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if val := ctx.Value(contextKeyTraceID); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithUserID adds a user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) string {
	if val := ctx.Value(contextKeyUserID); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithSessionID adds a session ID to the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}

// GetSessionID retrieves the session ID from context
func GetSessionID(ctx context.Context) string {
	if val := ctx.Value(contextKeySessionID); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithOperation adds an operation name to the context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextKeyOperation, operation)
}

// GetOperation retrieves the operation from context
func GetOperation(ctx context.Context) string {
	if val := ctx.Value(contextKeyOperation); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithComponent adds a component name to the context
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextKeyComponent, component)
}

// GetComponent retrieves the component from context
func GetComponent(ctx context.Context) string {
	if val := ctx.Value(contextKeyComponent); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// WithStartTime adds the start time to the context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, contextKeyStartTime, startTime)
}

// GetStartTime retrieves the start time from context
func GetStartTime(ctx context.Context) time.Time {
	if val := ctx.Value(contextKeyStartTime); val != nil {
		if t, ok := val.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// GetDuration calculates the duration since start time
func GetDuration(ctx context.Context) time.Duration {
	startTime := GetStartTime(ctx)
	if startTime.IsZero() {
		return 0
	}
	return time.Since(startTime)
}

// NewRequestContext creates a new request context with generated IDs
func NewRequestContext(ctx context.Context, operation string) context.Context {
	requestID := GetRequestID(ctx)
	if requestID == "" {
		requestID = GenerateID()
		ctx = WithRequestID(ctx, requestID)
	}

	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = GenerateTraceID()
		ctx = WithTraceID(ctx, traceID)
	}

	if operation != "" {
		ctx = WithOperation(ctx, operation)
	}

	ctx = WithStartTime(ctx, time.Now())

	return ctx
}

// GenerateID generates a random ID for requests
func GenerateID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// GenerateTraceID generates a 128-bit trace ID
func GenerateTraceID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
