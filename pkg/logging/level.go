package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LevelHandler provides per-component log level filtering
type LevelHandler struct {
	handler         slog.Handler
	defaultLevel    slog.Level
	componentLevels map[string]slog.Level
	mu              sync.RWMutex
}

// NewLevelHandler creates a new level handler with per-component filtering
func NewLevelHandler(handler slog.Handler, defaultLevel slog.Level) *LevelHandler {
	return &LevelHandler{
		handler:         handler,
		defaultLevel:    defaultLevel,
		componentLevels: make(map[string]slog.Level),
	}
}

// Handle implements slog.Handler interface with per-component level filtering
func (lh *LevelHandler) Handle(ctx context.Context, record slog.Record) error {
	component := lh.extractComponent(ctx, record)
	requiredLevel := lh.getLevelForComponent(component)

	if record.Level < requiredLevel {
		return nil
	}

	return lh.handler.Handle(ctx, record)
}

// WithAttrs implements slog.Handler interface
func (lh *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelHandler{
		handler:         lh.handler.WithAttrs(attrs),
		defaultLevel:    lh.defaultLevel,
		componentLevels: lh.copyComponentLevels(),
	}
}

// WithGroup implements slog.Handler interface
func (lh *LevelHandler) WithGroup(name string) slog.Handler {
	return &LevelHandler{
		handler:         lh.handler.WithGroup(name),
		defaultLevel:    lh.defaultLevel,
		componentLevels: lh.copyComponentLevels(),
	}
}

// Enabled implements slog.Handler interface
func (lh *LevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	component := lh.extractComponent(ctx, slog.Record{})
	requiredLevel := lh.getLevelForComponent(component)

	if level < requiredLevel {
		return false
	}

	return lh.handler.Enabled(ctx, level)
}

// extractComponent extracts the component name from context or record attributes
func (lh *LevelHandler) extractComponent(ctx context.Context, record slog.Record) string {
	if component := GetComponent(ctx); component != "" {
		return component
	}

	var componentName string
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "component" {
			componentName = attr.Value.String()
			return false
		}
		return true
	})

	if componentName != "" {
		return componentName
	}

	return "default"
}

// getLevelForComponent returns the log level for a specific component
func (lh *LevelHandler) getLevelForComponent(component string) slog.Level {
	lh.mu.RLock()
	defer lh.mu.RUnlock()

	if level, exists := lh.componentLevels[component]; exists {
		return level
	}

	// Wildcard patterns use simple prefix matching
	for pattern, level := range lh.componentLevels {
		if strings.Contains(pattern, "*") {
			prefix := strings.TrimSuffix(pattern, "*")
			if strings.HasPrefix(component, prefix) {
				return level
			}
		}
	}

	return lh.defaultLevel
}

// SetComponentLevel sets the log level for a specific component
func (lh *LevelHandler) SetComponentLevel(component string, level slog.Level) {
	lh.mu.Lock()
	defer lh.mu.Unlock()

	lh.componentLevels[component] = level
}

// copyComponentLevels creates a copy of the component levels map
func (lh *LevelHandler) copyComponentLevels() map[string]slog.Level {
	lh.mu.RLock()
	defer lh.mu.RUnlock()

	copied := make(map[string]slog.Level)
	for component, level := range lh.componentLevels {
		copied[component] = level
	}
	return copied
}
