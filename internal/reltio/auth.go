package reltio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// HeaderSourceTag identifies this server on every outbound API call.
const HeaderSourceTag = "Reltio-Open-MCP-Server"

// Authenticator exchanges client credentials for access tokens. Tokens are
// not cached: every call performs a fresh exchange so a revoked credential
// takes effect immediately.
type Authenticator struct {
	authServer string
	basicToken string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAuthenticator creates an authenticator from the server settings.
func NewAuthenticator(cfg *config.Settings, client *http.Client) *Authenticator {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Authenticator{
		authServer: cfg.AuthServer,
		basicToken: cfg.BasicToken(),
		httpClient: client,
		logger:     logging.GetGlobalLogger("reltio.auth"),
	}
}

// AccessToken performs the client-credentials exchange and returns the
// access token.
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	authURL := fmt.Sprintf("%s/oauth/token?grant_type=client_credentials", a.authServer)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAuthentication, "Authentication failed")
	}
	req.Header.Set("Authorization", "Basic "+a.basicToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.ErrorContext(ctx, "token request failed", slog.String("error", err.Error()))
		return "", errors.Wrapf(err, errors.ErrCodeAuthentication, "Authentication failed: %s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAuthentication, "Authentication failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.WarnContext(ctx, "token endpoint returned non-success status",
			slog.Int("status", resp.StatusCode),
		)
		return "", errors.Newf(errors.ErrCodeAuthentication, "Authentication failed: %s", string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAuthentication, "Authentication failed")
	}
	if result.AccessToken == "" {
		return "", errors.New(errors.ErrCodeAuthentication, "Authentication failed: no access token in response")
	}

	return result.AccessToken, nil
}

// Headers returns the standard header set for Reltio API calls, including a
// freshly fetched bearer token.
func (a *Authenticator) Headers(ctx context.Context) (map[string]string, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Source":        HeaderSourceTag,
	}, nil
}
