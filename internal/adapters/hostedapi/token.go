package hostedapi

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenHolder stores the bearer credential the client currently holds and
// exposes it as an oauth2.TokenSource. The sign-in flow installs tokens;
// the session core only presents them to the backend and drops them on
// sign-out. It never treats the token's own claims as proof of a session.
type TokenHolder struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

var _ oauth2.TokenSource = (*TokenHolder)(nil)

// NewTokenHolder creates an empty holder.
func NewTokenHolder() *TokenHolder { return &TokenHolder{} }

// Set installs a raw access token. The token's exp claim, when decodable,
// becomes the oauth2 expiry so reuse wrappers know when it goes stale; the
// claims are read unverified because verification is the backend's job, not
// the client's.
func (h *TokenHolder) Set(accessToken string) {
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if exp, ok := tokenExpiry(accessToken); ok {
		tok.Expiry = exp
	}
	h.mu.Lock()
	h.token = tok
	h.mu.Unlock()
}

// Drop discards the held token, e.g. on sign-out.
func (h *TokenHolder) Drop() {
	h.mu.Lock()
	h.token = nil
	h.mu.Unlock()
}

// Token implements oauth2.TokenSource.
func (h *TokenHolder) Token() (*oauth2.Token, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.token == nil || h.token.AccessToken == "" {
		return nil, errors.New("no access token held")
	}
	return h.token, nil
}

// Subject returns the sub claim of the held token, for diagnostics only.
func (h *TokenHolder) Subject() string {
	h.mu.RLock()
	raw := ""
	if h.token != nil {
		raw = h.token.AccessToken
	}
	h.mu.RUnlock()
	if raw == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
