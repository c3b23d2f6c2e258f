package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reltio-open/reltio-mcp-server/internal/admin"
	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/server"
	"github.com/reltio-open/reltio-mcp-server/internal/tools"
	"github.com/reltio-open/reltio-mcp-server/internal/transport"
	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

func main() {
	var configPath string
	var transportOverride string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&transportOverride, "transport", "", "Override transport type (stdio, http, sse)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if transportOverride != "" {
		cfg.TransportType = transportOverride
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid transport override: %v", err)
		}
	}

	if err := initLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	logger := logging.GetGlobalLogger("main")
	logger.Info("Starting server",
		slog.String("server", cfg.ServerName),
		slog.String("environment", cfg.Environment),
		slog.String("tenant", cfg.Tenant),
		slog.String("transport", cfg.TransportType),
	)

	client := reltio.NewClient(cfg, nil)
	recorder := reltio.NewActivityRecorder(client)
	registry := tools.NewRegistry(cfg, client, recorder)
	dispatcher := server.New(cfg, registry)

	trans, err := transport.NewFactory().CreateTransport(cfg)
	if err != nil {
		logger.Error("Failed to create transport", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.AdminPort > 0 {
		adminServer := admin.NewServer(cfg)
		go func() {
			if err := adminServer.StartServer(cfg.AdminPort); err != nil {
				logger.Error("Admin server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	if err := trans.Start(ctx, dispatcher.Handle); err != nil && err != context.Canceled {
		logger.Error("Transport error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server stopped")
}

// initLogging maps the server settings onto the logging factory config.
// Stdio transports must keep stdout clean for the protocol, so logs always
// go to stderr.
func initLogging(cfg *config.Settings) error {
	logCfg := logging.DefaultConfig()
	if cfg.LogLevel != "" {
		logCfg.Level = logging.LogLevel(cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "json":
		logCfg.Format = logging.LogFormatJSON
	case "text":
		logCfg.Format = logging.LogFormatText
	default:
		return fmt.Errorf("invalid logFormat: %s", cfg.LogFormat)
	}
	logCfg.Output = logging.LogOutputStderr
	return logging.Initialize(logCfg)
}
