package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

const (
	oauthBasePort  = 8123
	oauthPortTries = 5
	oauthWait      = 60 * time.Second

	// Tokens are refreshed this long before they actually expire.
	tokenExpiryBuffer = 5 * time.Minute
)

// oauthConfig drives the interactive authorization-code flow against the
// Reltio auth server.
type oauthConfig struct {
	AuthorizeURL string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// tokenCache holds the current access token and re-runs the authorization
// flow when it is missing or about to expire.
type tokenCache struct {
	cfg oauthConfig

	mu        sync.Mutex
	token     string
	createdAt time.Time
	expiresIn time.Duration
}

func newTokenCache(cfg oauthConfig) *tokenCache {
	return &tokenCache{cfg: cfg}
}

// Token returns a valid access token, authorizing interactively if needed.
func (t *tokenCache) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Add(tokenExpiryBuffer).Before(t.createdAt.Add(t.expiresIn)) {
		return t.token, nil
	}

	code, err := authorize(ctx, t.cfg)
	if err != nil {
		return "", err
	}
	token, expiresIn, err := exchangeCode(ctx, t.cfg, code)
	if err != nil {
		return "", err
	}

	t.token = token
	t.createdAt = time.Now()
	t.expiresIn = time.Duration(expiresIn) * time.Second
	return t.token, nil
}

// authorize runs a loopback HTTP server to capture the redirect, scanning a
// small port range in case the base port is taken, and opens the browser at
// the authorization URL.
func authorize(ctx context.Context, cfg oauthConfig) (string, error) {
	for port := oauthBasePort; port < oauthBasePort+oauthPortTries; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			fmt.Printf("Port %d is busy, trying next port...\n", port)
			continue
		}

		redirectURI := fmt.Sprintf("http://localhost:%d/callback", port)
		authURL := fmt.Sprintf("%s?client_id=%s&redirect_uri=%s&response_type=code",
			cfg.AuthorizeURL, cfg.ClientID, redirectURI)

		code, err := waitForCallback(ctx, listener, authURL)
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", fmt.Errorf("no available callback port in %d-%d", oauthBasePort, oauthBasePort+oauthPortTries-1)
}

func waitForCallback(ctx context.Context, listener net.Listener, authURL string) (string, error) {
	codeChan := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "<h1>Missing code.</h1>")
			return
		}
		fmt.Fprint(w, "<h1>Authorization successful. You can close this window.</h1>")
		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Close()

	fmt.Printf("Waiting for auth redirect on %s ...\n", listener.Addr())
	if err := openBrowser(authURL); err != nil {
		fmt.Printf("Could not open browser, visit manually:\n%s\n", authURL)
	}

	select {
	case code := <-codeChan:
		return code, nil
	case <-time.After(oauthWait):
		return "", fmt.Errorf("timed out waiting for authorization")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// exchangeCode trades the authorization code for an access token using the
// client's basic credentials.
func exchangeCode(ctx context.Context, cfg oauthConfig, code string) (string, int, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basic)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token exchange failed: status %d: %s", resp.StatusCode, respBody)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", 0, err
	}
	if token.AccessToken == "" {
		return "", 0, fmt.Errorf("token response carried no access_token")
	}
	return token.AccessToken, token.ExpiresIn, nil
}
