package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Masker keeps credential material out of the log stream.
type Masker struct {
	config   MaskingConfig
	patterns []*regexp.Regexp
}

// NewMasker creates a new masker
func NewMasker(config MaskingConfig) *Masker {
	m := &Masker{
		config:   config,
		patterns: make([]*regexp.Regexp, 0),
	}

	// Compile custom patterns
	for _, pattern := range config.Patterns {
		if re, err := regexp.Compile(pattern); err == nil {
			m.patterns = append(m.patterns, re)
		}
	}

	if config.MaskBearerTokens {
		if re, err := regexp.Compile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]+`); err == nil {
			m.patterns = append(m.patterns, re)
		}
	}

	if config.MaskBasicAuth {
		if re, err := regexp.Compile(`(?i)basic\s+[a-zA-Z0-9+/=]+`); err == nil {
			m.patterns = append(m.patterns, re)
		}
	}

	if config.MaskAPIKeys {
		if re, err := regexp.Compile(`(?i)\b[a-z0-9]{32,}\b`); err == nil {
			m.patterns = append(m.patterns, re)
		}
	}

	return m
}

// MaskAttr masks sensitive data in a log attribute
func (m *Masker) MaskAttr(groups []string, attr slog.Attr) slog.Attr {
	if !m.config.Enabled {
		return attr
	}

	if m.shouldMaskField(attr.Key) {
		return slog.Attr{
			Key:   attr.Key,
			Value: slog.StringValue("***MASKED***"),
		}
	}

	if attr.Value.Kind() == slog.KindString {
		masked := m.MaskString(attr.Value.String())
		return slog.Attr{
			Key:   attr.Key,
			Value: slog.StringValue(masked),
		}
	}

	return attr
}

// shouldMaskField checks if a field should be completely masked
func (m *Masker) shouldMaskField(field string) bool {
	fieldLower := strings.ToLower(field)

	for _, maskField := range m.config.Fields {
		if strings.ToLower(maskField) == fieldLower {
			return true
		}
	}

	sensitiveFields := []string{
		"password", "secret", "token", "authorization",
		"client_secret", "credential", "access_token",
	}

	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldLower, sensitive) {
			return true
		}
	}

	return false
}

// MaskString masks sensitive patterns in a string
func (m *Masker) MaskString(s string) string {
	masked := s

	for _, pattern := range m.patterns {
		masked = pattern.ReplaceAllStringFunc(masked, func(match string) string {
			if len(match) <= 4 {
				return "***"
			}
			// Leave a short prefix so operators can still tell token kinds apart
			return match[:4] + "***"
		})
	}

	return masked
}
