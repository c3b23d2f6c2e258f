package logging

import (
	"fmt"
	"strings"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LogOutput represents the destination for logs
type LogOutput string

const (
	LogOutputStdout LogOutput = "stdout"
	LogOutputStderr LogOutput = "stderr"
	LogOutputFile   LogOutput = "file"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config represents the complete logging configuration
type Config struct {
	Level  LogLevel  `yaml:"level" json:"level"`
	Format LogFormat `yaml:"format" json:"format"`
	Output LogOutput `yaml:"output" json:"output"`

	FilePath string `yaml:"filePath,omitempty" json:"filePath,omitempty"`

	// Component-specific log levels
	ComponentLevels map[string]LogLevel `yaml:"componentLevels,omitempty" json:"componentLevels,omitempty"`

	// Sensitive data handling
	Masking MaskingConfig `yaml:"masking,omitempty" json:"masking,omitempty"`

	// Request tracking
	EnableRequestID bool `yaml:"enableRequestId" json:"enableRequestId"`

	// Development settings
	EnableCaller bool `yaml:"enableCaller" json:"enableCaller"`
}

// MaskingConfig defines sensitive data masking rules
type MaskingConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	Fields   []string `yaml:"fields" json:"fields"`     // Field names to mask
	Patterns []string `yaml:"patterns" json:"patterns"` // Regex patterns for value masking

	// Predefined patterns
	MaskBearerTokens bool `yaml:"maskBearerTokens" json:"maskBearerTokens"`
	MaskBasicAuth    bool `yaml:"maskBasicAuth" json:"maskBasicAuth"`
	MaskAPIKeys      bool `yaml:"maskApiKeys" json:"maskApiKeys"`
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  LogLevelInfo,
		Format: LogFormatJSON,
		Output: LogOutputStderr,

		EnableRequestID: true,

		Masking: MaskingConfig{
			Enabled:          true,
			MaskBearerTokens: true,
			MaskBasicAuth:    true,
			MaskAPIKeys:      true,
		},

		EnableCaller: false,
	}
}

// DevelopmentConfig returns a configuration suitable for development
func DevelopmentConfig() *Config {
	config := DefaultConfig()
	config.Level = LogLevelDebug
	config.Format = LogFormatText
	config.EnableCaller = true
	config.Masking.Enabled = false // Disable masking in dev for easier debugging
	return config
}

// Validate validates the logging configuration
func (c *Config) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}

	for component, level := range c.ComponentLevels {
		if !validLevels[level] {
			return fmt.Errorf("invalid log level for component %s: %s", component, level)
		}
	}

	validFormats := map[LogFormat]bool{
		LogFormatJSON: true,
		LogFormatText: true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s", c.Format)
	}

	validOutputs := map[LogOutput]bool{
		LogOutputStdout: true,
		LogOutputStderr: true,
		LogOutputFile:   true,
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid log output: %s", c.Output)
	}

	if c.Output == LogOutputFile && strings.TrimSpace(c.FilePath) == "" {
		return fmt.Errorf("filePath required when output is 'file'")
	}

	return nil
}

// GetLevelForComponent returns the log level for a specific component
func (c *Config) GetLevelForComponent(component string) LogLevel {
	if level, ok := c.ComponentLevels[component]; ok {
		return level
	}
	return c.Level
}
