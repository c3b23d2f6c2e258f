package reltio

import (
	"net/url"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// requireTLS rejects any plain-http URL before a request leaves the process.
const requireTLS = true

// allowedOrigins is the fixed Origin allow-list for forwarded browser
// requests.
var allowedOrigins = []string{
	"https://app.reltio.com",
	"https://api.reltio.com",
}

// ValidateConnectionSecurity checks the target URL scheme and, when an
// Origin header is present, checks it against the allow-list. The returned
// error carries a generic message so internals do not leak to clients.
func ValidateConnectionSecurity(rawURL string, headers map[string]string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSecurity, "Insecure connection")
	}

	if requireTLS && parsed.Scheme != "https" {
		return errors.New(errors.ErrCodeSecurity, "Insecure connection: TLS is required for all connections")
	}

	if origin, ok := headers["Origin"]; ok {
		allowed := false
		for _, candidate := range allowedOrigins {
			if origin == candidate {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Newf(errors.ErrCodeSecurity, "Invalid origin: Origin %s is not allowed", origin)
		}
	}

	return nil
}
