package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Factory creates and manages loggers for different components
type Factory struct {
	config  *Config
	loggers map[string]*slog.Logger
	mu      sync.RWMutex

	handler slog.Handler
	masker  *Masker
}

// NewFactory creates a new logger factory
func NewFactory(config *Config) (*Factory, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	f := &Factory{
		config:  config,
		loggers: make(map[string]*slog.Logger),
	}

	// Initialize masker BEFORE handler (needed for ReplaceAttr)
	if config.Masking.Enabled {
		f.masker = NewMasker(config.Masking)
	}

	if err := f.initializeHandler(); err != nil {
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	return f, nil
}

// initializeHandler creates the base slog handler
func (f *Factory) initializeHandler() error {
	var writer io.Writer

	switch f.config.Output {
	case LogOutputStdout:
		writer = os.Stdout
	case LogOutputStderr:
		writer = os.Stderr
	case LogOutputFile:
		file, err := os.OpenFile(f.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	default:
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     f.slogLevel(f.config.Level),
		AddSource: f.config.EnableCaller,
	}

	if f.masker != nil {
		opts.ReplaceAttr = f.replaceAttr
	}

	switch f.config.Format {
	case LogFormatJSON:
		f.handler = slog.NewJSONHandler(writer, opts)
	case LogFormatText:
		f.handler = slog.NewTextHandler(writer, opts)
	default:
		f.handler = slog.NewJSONHandler(writer, opts)
	}

	return nil
}

// GetLogger returns a logger for a specific component
func (f *Factory) GetLogger(component string) *slog.Logger {
	f.mu.RLock()
	if logger, exists := f.loggers[component]; exists {
		f.mu.RUnlock()
		return logger
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	level := f.config.GetLevelForComponent(component)
	handler := f.handler

	// If component has a different level, wrap the handler
	if level != f.config.Level {
		handler = NewLevelHandler(handler, f.slogLevel(level))
	}

	logger := slog.New(handler).With(
		slog.String("component", component),
	)

	f.loggers[component] = logger
	return logger
}

// GetMasker returns the data masker
func (f *Factory) GetMasker() *Masker {
	return f.masker
}

// WithContext creates a logger with request context
func (f *Factory) WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = f.GetLogger("default")
	}

	attrs := []slog.Attr{}

	if reqID := GetRequestID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	if userID := GetUserID(ctx); userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if operation := GetOperation(ctx); operation != "" {
		attrs = append(attrs, slog.String("operation", operation))
	}

	if len(attrs) > 0 {
		args := make([]any, 0, len(attrs)*2)
		for _, attr := range attrs {
			args = append(args, attr.Key, attr.Value)
		}
		return logger.With(args...)
	}

	return logger
}

// replaceAttr handles attribute replacement for masking
func (f *Factory) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if f.masker != nil {
		a = f.masker.MaskAttr(groups, a)
	}
	return a
}

// slogLevel converts our LogLevel to slog.Level
func (f *Factory) slogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Global factory instance
var (
	globalFactory *Factory
	globalMu      sync.RWMutex
)

// Initialize sets up the global logger factory
func Initialize(config *Config) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	factory, err := NewFactory(config)
	if err != nil {
		return err
	}

	globalFactory = factory
	return nil
}

// GetGlobalLogger returns a logger from the global factory
func GetGlobalLogger(component string) *slog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalFactory == nil {
		// Return default logger if not initialized
		return slog.Default()
	}

	return globalFactory.GetLogger(component)
}

// GetGlobalMasker returns the global data masker
func GetGlobalMasker() *Masker {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalFactory == nil {
		return nil
	}

	return globalFactory.GetMasker()
}

// Shutdown releases the global logging factory
func Shutdown() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalFactory = nil
	return nil
}
