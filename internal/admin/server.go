package admin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// Server exposes operational endpoints next to the main transport: a health
// probe and a sanitized view of the running configuration. Credentials are
// masked before they leave the process.
type Server struct {
	cfg    *config.Settings
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates an admin server over the given settings.
func NewServer(cfg *config.Settings) *Server {
	a := &Server{
		cfg:    cfg,
		logger: logging.GetGlobalLogger("admin"),
		mux:    http.NewServeMux(),
	}
	a.mux.HandleFunc("/health", a.handleHealth)
	a.mux.HandleFunc("/config", a.handleConfig)
	return a
}

// ServeHTTP implements http.Handler.
func (a *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "healthy",
		"server": a.cfg.ServerName,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleConfig reports the running configuration with credentials masked.
func (a *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	masker := logging.GetGlobalMasker()
	clientID := a.cfg.ClientID
	if masker != nil {
		clientID = masker.MaskString(clientID)
	}

	response := map[string]interface{}{
		"serverName":    a.cfg.ServerName,
		"environment":   a.cfg.Environment,
		"tenant":        a.cfg.Tenant,
		"authServer":    a.cfg.AuthServer,
		"clientId":      clientID,
		"clientSecret":  "***",
		"transportType": a.cfg.TransportType,
		"transport": map[string]interface{}{
			"host":       a.cfg.Transport.Host,
			"port":       a.cfg.Transport.Port,
			"enableCors": a.cfg.Transport.EnableCORS,
		},
		"logLevel":  a.cfg.LogLevel,
		"logFormat": a.cfg.LogFormat,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// StartServer starts the admin listener on the specified port.
func (a *Server) StartServer(port int) error {
	addr := fmt.Sprintf(":%d", port)
	a.logger.Info("Starting admin server", slog.String("address", addr))

	server := &http.Server{
		Addr:    addr,
		Handler: a,
	}
	return server.ListenAndServe()
}
