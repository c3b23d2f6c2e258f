package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings is the full server configuration, built once at startup. Reltio
// credentials can be supplied in the YAML file or through RELTIO_* environment
// variables; the environment wins.
type Settings struct {
	ServerName    string            `yaml:"serverName"`
	Environment   string            `yaml:"environment"`
	Tenant        string            `yaml:"tenant"`
	ClientID      string            `yaml:"clientID"`
	ClientSecret  string            `yaml:"clientSecret"`
	AuthServer    string            `yaml:"authServer"`
	TransportType string            `yaml:"transportType"`
	Transport     TransportSettings `yaml:"transport"`
	LogLevel      string            `yaml:"logLevel"`
	LogFormat     string            `yaml:"logFormat"`
	AdminPort     int               `yaml:"adminPort"`
}

// TransportSettings configures the HTTP and SSE transports.
type TransportSettings struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	ReadTimeout      int    `yaml:"readTimeout"`  // seconds
	WriteTimeout     int    `yaml:"writeTimeout"` // seconds
	EnableCORS       bool   `yaml:"enableCORS"`
	SSEHeartbeatSecs int    `yaml:"sseHeartbeatSecs"`
}

// BasicToken derives the base64(clientID:clientSecret) value used for the
// OAuth client-credentials exchange.
func (s *Settings) BasicToken() string {
	return base64.StdEncoding.EncodeToString([]byte(s.ClientID + ":" + s.ClientSecret))
}

// Validate validates the configuration settings
func (s *Settings) Validate() error {
	// Validate LogLevel - must be one of [debug, info, warn, error] (case-insensitive)
	// Empty log level is allowed and will use default
	if s.LogLevel != "" {
		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		normalizedLogLevel := strings.ToLower(s.LogLevel)
		if !validLogLevels[normalizedLogLevel] {
			return fmt.Errorf("logLevel must be one of [debug, info, warn, error], got '%s'", s.LogLevel)
		}
		s.LogLevel = normalizedLogLevel
	}

	validTransports := map[string]bool{
		"stdio": true,
		"http":  true,
		"sse":   true,
		"":      true, // Empty defaults to stdio
	}
	normalizedTransport := strings.ToLower(s.TransportType)
	if !validTransports[normalizedTransport] {
		return fmt.Errorf("transportType must be one of [stdio, http, sse], got '%s'", s.TransportType)
	}
	s.TransportType = normalizedTransport

	if s.Transport.Port < 0 || s.Transport.Port > 65535 {
		return fmt.Errorf("transport.port must be between 0 and 65535, got %d", s.Transport.Port)
	}
	if s.AdminPort < 0 || s.AdminPort > 65535 {
		return fmt.Errorf("adminPort must be between 0 and 65535, got %d", s.AdminPort)
	}

	if s.Tenant == "" {
		return fmt.Errorf("tenant must be set")
	}
	if s.ClientID == "" || s.ClientSecret == "" {
		return fmt.Errorf("clientID and clientSecret must be set (RELTIO_CLIENT_ID / RELTIO_CLIENT_SECRET)")
	}
	if !strings.HasPrefix(s.AuthServer, "https://") {
		return fmt.Errorf("authServer must use https, got '%s'", s.AuthServer)
	}

	return nil
}

func (s *Settings) applyDefaults() {
	if s.ServerName == "" {
		s.ServerName = "reltio-mcp-server"
	}
	if s.Environment == "" {
		s.Environment = "dev"
	}
	if s.AuthServer == "" {
		s.AuthServer = "https://auth.reltio.com"
	}
	if s.Transport.ReadTimeout == 0 {
		s.Transport.ReadTimeout = 30
	}
	if s.Transport.WriteTimeout == 0 {
		s.Transport.WriteTimeout = 30
	}
	if s.Transport.SSEHeartbeatSecs == 0 {
		s.Transport.SSEHeartbeatSecs = 30
	}
}

func (s *Settings) applyEnvOverrides() {
	overrides := map[string]*string{
		"RELTIO_SERVER_NAME":   &s.ServerName,
		"RELTIO_ENVIRONMENT":   &s.Environment,
		"RELTIO_TENANT":        &s.Tenant,
		"RELTIO_CLIENT_ID":     &s.ClientID,
		"RELTIO_CLIENT_SECRET": &s.ClientSecret,
		"RELTIO_AUTH_SERVER":   &s.AuthServer,
	}
	for name, target := range overrides {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}
}

func Load(path string) (*Settings, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	err = yaml.Unmarshal(bytes, &settings)
	if err != nil {
		return nil, err
	}

	settings.applyEnvOverrides()
	settings.applyDefaults()

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &settings, nil
}
