package reltio

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// newTestClient starts a TLS server with the given API handler plus a token
// endpoint, and returns a client wired to both.
func newTestClient(t *testing.T, api http.HandlerFunc, tokenCalls *int64) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(tokenCalls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
		fmt.Fprintf(w, `{"access_token": "token-%d"}`, atomic.LoadInt64(tokenCalls))
	})
	mux.HandleFunc("/api/", api)

	server := httptest.NewTLSServer(mux)
	t.Cleanup(server.Close)

	cfg := &config.Settings{
		Tenant:       "testTenant",
		ClientID:     "client",
		ClientSecret: "secret",
		AuthServer:   server.URL,
		Environment:  "test",
	}
	return NewClient(cfg, server.Client()), server
}

func TestDo_Success(t *testing.T) {
	var tokenCalls int64
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, HeaderSourceTag, r.Header.Get("Source"))
		fmt.Fprint(w, `{"total": 3}`)
	}, &tokenCalls)

	result, err := client.Do(context.Background(), Request{URL: server.URL + "/api/entities"})

	require.NoError(t, err)
	decoded, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), decoded["total"])
	assert.Equal(t, int64(1), tokenCalls)
}

func TestDo_RetriesOnceOnInvalidToken(t *testing.T) {
	var tokenCalls, apiCalls int64
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&apiCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": "invalid_token"}`)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}, &tokenCalls)

	result, err := client.Do(context.Background(), Request{URL: server.URL + "/api/entities"})

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, result)
	assert.Equal(t, int64(2), apiCalls)
	// One exchange for the original call, one for the refresh.
	assert.Equal(t, int64(2), tokenCalls)
}

func TestDo_RetryIsBoundedToOne(t *testing.T) {
	var tokenCalls, apiCalls int64
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid_token"}`)
	}, &tokenCalls)

	_, err := client.Do(context.Background(), Request{URL: server.URL + "/api/entities"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthentication))
	assert.Equal(t, int64(2), apiCalls)
}

func TestDo_MapsUpstreamStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   errors.ErrorCode
	}{
		{http.StatusBadRequest, errors.ErrCodeValidation},
		{http.StatusForbidden, errors.ErrCodeAuthorization},
		{http.StatusNotFound, errors.ErrCodeNotFound},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimit},
		{http.StatusInternalServerError, errors.ErrCodeServer},
		{http.StatusServiceUnavailable, errors.ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			var tokenCalls int64
			client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error": "upstream failure"}`)
			}, &tokenCalls)

			_, err := client.Do(context.Background(), Request{URL: server.URL + "/api/entities"})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %s, got %s", tt.want, errors.GetCode(err))
		})
	}
}

func TestDo_RejectsPlainHTTP(t *testing.T) {
	cfg := &config.Settings{
		Tenant:       "testTenant",
		ClientID:     "client",
		ClientSecret: "secret",
		AuthServer:   "https://auth.reltio.com",
	}
	client := NewClient(cfg, nil)

	_, err := client.Do(context.Background(), Request{URL: "http://api.reltio.com/entities"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSecurity))
}

func TestDo_EmptyBodyReturnsNil(t *testing.T) {
	var tokenCalls int64
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, &tokenCalls)

	result, err := client.Do(context.Background(), Request{
		URL:    server.URL + "/api/entities/123/_notMatch",
		Method: http.MethodPost,
	})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestValidateConnectionSecurity_Origins(t *testing.T) {
	err := ValidateConnectionSecurity("https://api.reltio.com/x",
		map[string]string{"Origin": "https://evil.example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSecurity))

	err = ValidateConnectionSecurity("https://api.reltio.com/x",
		map[string]string{"Origin": "https://app.reltio.com"})
	assert.NoError(t, err)
}

func TestAuthenticator_FailureStatuses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid_client"}`)
	})
	server := httptest.NewTLSServer(mux)
	defer server.Close()

	cfg := &config.Settings{ClientID: "bad", ClientSecret: "creds", AuthServer: server.URL}
	auth := NewAuthenticator(cfg, server.Client())

	_, err := auth.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthentication))
}
