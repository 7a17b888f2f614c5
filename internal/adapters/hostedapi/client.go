package hostedapi

// Package hostedapi is the HTTP client for the hosted backend-as-a-service
// that fronts Fixify's managed deployments: identity validation, profile
// reads, sign-out, object storage, and the push-based auth event stream.
// It implements the ports consumed by the session core; the backend's own
// engine (token issuance, database, storage) stays opaque behind this
// contract.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
	"golang.org/x/oauth2"
)

// Config captures what the client needs to talk to one hosted project.
type Config struct {
	// BaseURL is the project root, e.g. https://example.backend.fixify.dev.
	BaseURL string

	// APIKey is the project's publishable key, sent on every request.
	APIKey string

	// Tokens yields the bearer credential the client currently holds. The
	// sign-in flow (external to this core) installs it; identity checks
	// present it to the backend for live validation.
	Tokens oauth2.TokenSource

	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// Client talks to the hosted backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	tokens  *cachedTokens
	client  *http.Client
	log     *slog.Logger
}

var (
	_ ports.IdentityProvider = (*Client)(nil)
	_ ports.ProfileStore     = (*Client)(nil)
	_ ports.FileStore        = (*Client)(nil)
)

// NewClient builds a hosted backend client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("hosted backend base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("hosted backend API key is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token source is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		tokens:  newCachedTokens(cfg.Tokens),
		client:  hc,
		log:     log,
	}, nil
}

// cachedTokens lets repeated identity checks reuse an unexpired token
// instead of hitting the refresh path every time. Unlike
// oauth2.ReuseTokenSource it can forget: drop empties the cache and, when
// the underlying source supports it, discards the stored credential, so a
// signed-out credential can never be served back from cache.
type cachedTokens struct {
	mu  sync.Mutex
	src oauth2.TokenSource
	tok *oauth2.Token
}

func newCachedTokens(src oauth2.TokenSource) *cachedTokens {
	return &cachedTokens{src: src}
}

// Token implements oauth2.TokenSource.
func (c *cachedTokens) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tok.Valid() {
		return c.tok, nil
	}
	tok, err := c.src.Token()
	if err != nil {
		return nil, err
	}
	c.tok = tok
	return tok, nil
}

func (c *cachedTokens) drop() {
	c.mu.Lock()
	c.tok = nil
	c.mu.Unlock()
	if d, ok := c.src.(interface{ Drop() }); ok {
		d.Drop()
	}
}

// authUser mirrors the backend's GET /auth/v1/user response.
type authUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expires_at"`
}

// Current performs the live identity check: it presents the held credential
// to the backend's auth endpoint. The backend, not any local cache, decides
// whether a session exists.
func (c *Client) Current(ctx context.Context) (domainauth.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil, "")
	if err != nil {
		return domainauth.Identity{}, err
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainauth.Identity{}, ports.ErrNoIdentity
	case resp.StatusCode != http.StatusOK:
		return domainauth.Identity{}, fmt.Errorf("identity check: unexpected status %d", resp.StatusCode)
	}

	var user authUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if user.ID == "" {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}

	identity := domainauth.Identity{ID: user.ID, Email: user.Email}
	if user.ExpiresAt > 0 {
		identity.ExpiresAt = time.Unix(user.ExpiresAt, 0)
	}
	return identity, nil
}

// SignOut revokes the held credential with the backend, presenting it one
// last time, then drops it no matter what the backend answered. A failed
// revocation must not leave this client able to re-authenticate on the next
// identity check.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.tokens.drop()

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil, "")
	if err != nil {
		return err
	}
	defer drainClose(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("sign out: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Get reads the profile row keyed by identity id from the backend's
// relational API. The row endpoint answers with an array; an empty array is
// a missing profile.
func (c *Client) Get(ctx context.Context, id string) (domainauth.Profile, error) {
	if id == "" {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}

	u := fmt.Sprintf("%s/rest/v1/profiles?id=eq.%s&select=*", c.baseURL, url.QueryEscape(id))
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return domainauth.Profile{}, err
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domainauth.Profile{}, fmt.Errorf("profile fetch: unexpected status %d", resp.StatusCode)
	}

	var rows []domainauth.Profile
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return domainauth.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if len(rows) == 0 {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	return rows[0], nil
}

// Upload stores an object in the backend's storage service and returns its
// public URL.
func (c *Client) Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error) {
	if bucket == "" || path == "" {
		return "", errors.New("bucket and path are required")
	}

	objectPath := strings.TrimPrefix(path, "/")
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(bucket), objectPath)
	resp, err := c.do(ctx, http.MethodPost, u, r, "application/octet-stream")
	if err != nil {
		return "", err
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("storage upload: unexpected status %d", resp.StatusCode)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(bucket), objectPath), nil
}

// do issues one request with the project key and, when available, the held
// bearer credential attached.
func (c *Client) do(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		// No usable credential is the normal signed-out shape, not a
		// transport failure. Let the backend answer 401 for endpoints that
		// need one.
		c.log.Debug("hostedapi: no bearer token available", "error", err)
	} else {
		tok.SetAuthHeader(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	return resp, nil
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
