package transport

import (
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
)

// Factory builds the transport selected by the configuration.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateTransport returns the transport named by cfg.TransportType. An empty
// type means stdio.
func (f *Factory) CreateTransport(cfg *config.Settings) (Transport, error) {
	switch cfg.TransportType {
	case "stdio", "":
		return NewStdioTransport(), nil
	case "http":
		return NewHTTPTransport(&cfg.Transport), nil
	case "sse":
		return NewSSETransport(&cfg.Transport), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", cfg.TransportType)
	}
}
