package reltio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

const (
	// DefaultTimeout bounds ordinary API calls.
	DefaultTimeout = 30 * time.Second

	// LongOperationTimeout bounds export job submissions.
	LongOperationTimeout = 120 * time.Second
)

// StatusError reports a non-2xx response from the Reltio API. The upstream
// status code drives error classification; the body is preserved verbatim
// for the message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

// Request describes one Reltio API call.
type Request struct {
	URL     string
	Method  string
	Params  map[string]string
	Body    interface{}
	Headers map[string]string
	Timeout time.Duration
}

// Client executes Reltio API requests. A 401 response carrying an
// invalid_token marker triggers exactly one header refresh and retry.
type Client struct {
	auth       *Authenticator
	urls       *URLBuilder
	tenant     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client from the server settings. The http.Client is
// shared across invocations; per-request deadlines come from contexts.
func NewClient(cfg *config.Settings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		auth:       NewAuthenticator(cfg, httpClient),
		urls:       NewURLBuilder(cfg.Environment),
		tenant:     cfg.Tenant,
		httpClient: httpClient,
		logger:     logging.GetGlobalLogger("reltio.client"),
	}
}

// URLs exposes the URL builder for tool implementations.
func (c *Client) URLs() *URLBuilder { return c.urls }

// DefaultTenant returns the tenant configured for this server.
func (c *Client) DefaultTenant() string { return c.tenant }

// Headers fetches the standard authenticated header set.
func (c *Client) Headers(ctx context.Context) (map[string]string, error) {
	return c.auth.Headers(ctx)
}

// Do executes the request and decodes the JSON response. Headers are
// fetched from the authenticator when the request carries none.
func (c *Client) Do(ctx context.Context, req Request) (interface{}, error) {
	if err := ValidateConnectionSecurity(req.URL, req.Headers); err != nil {
		c.logger.ErrorContext(ctx, "security validation failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if req.Headers == nil {
		headers, err := c.auth.Headers(ctx)
		if err != nil {
			return nil, err
		}
		req.Headers = headers
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := logging.StartTimer(ctx, c.logger, "reltio.api_call")
	result, err := c.execute(ctx, req, true)
	timer.EndWithError(err)

	if err != nil && ctx.Err() == context.DeadlineExceeded {
		c.logger.ErrorContext(ctx, "request timed out",
			slog.String("url", req.URL),
			slog.Duration("timeout", timeout),
		)
		return nil, errors.Newf(errors.ErrCodeTimeout, "HTTP request timed out after %d seconds", int(timeout.Seconds()))
	}
	return result, err
}

func (c *Client) execute(ctx context.Context, req Request, retryOn401 bool) (interface{}, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeServer, "failed to encode request body")
		}
		bodyReader = bytes.NewReader(encoded)
	}

	target := req.URL
	if len(req.Params) > 0 {
		values := url.Values{}
		for k, v := range req.Params {
			values.Set(k, v)
		}
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target = target + separator + values.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServer, "failed to build request")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeUnavailable, "API request failed: %s", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServer, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyText := string(raw)

		if resp.StatusCode == http.StatusUnauthorized && retryOn401 && strings.Contains(bodyText, "invalid_token") {
			if _, hadAuth := req.Headers["Authorization"]; hadAuth {
				c.logger.WarnContext(ctx, "access token rejected, refreshing and retrying once",
					slog.String("url", req.URL),
				)
				refreshed, authErr := c.auth.Headers(ctx)
				if authErr != nil {
					return nil, authErr
				}
				req.Headers = refreshed
				return c.execute(ctx, req, false)
			}
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: bodyText}
		c.logger.WarnContext(ctx, "API request failed",
			slog.String("url", req.URL),
			slog.Int("status", resp.StatusCode),
		)
		return nil, errors.Wrap(statusErr, errors.FromHTTPStatus(resp.StatusCode), statusErr.Error())
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeServer, "failed to decode response: %s", err.Error())
	}
	return decoded, nil
}
