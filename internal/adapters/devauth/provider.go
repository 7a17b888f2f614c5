package devauth

// Package devauth provides a config-driven identity provider for local development.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	UserID          string
	Email           string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development. It
// reports the configured identity until SignOut, after which it reports no
// session until Reset.
type Provider struct {
	mu        sync.Mutex
	identity  domainauth.Identity
	duration  time.Duration
	signedOut bool
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			ID:        cfg.UserID,
			Email:     cfg.Email,
			ExpiresAt: time.Now().Add(dur),
		},
		duration: dur,
	}, nil
}

// Current returns the configured identity, refreshing the expiry when it is
// close to running out so a long dev session never goes stale.
func (p *Provider) Current(_ context.Context) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signedOut {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	if time.Until(p.identity.ExpiresAt) < 5*time.Minute {
		p.identity.ExpiresAt = time.Now().Add(p.duration)
	}
	return p.identity, nil
}

// SignOut marks the dev session as ended.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.signedOut = true
	p.mu.Unlock()
	return nil
}

// Reset restores the dev session after a SignOut.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.signedOut = false
	p.identity.ExpiresAt = time.Now().Add(p.duration)
	p.mu.Unlock()
}
