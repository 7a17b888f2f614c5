package oidc

// Package oidc provides an OIDC-backed identity provider for self-hosted
// deployments. It validates whatever credential the client currently holds
// against the issuer; it does not run the interactive login flow itself.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// Provider implements ports.IdentityProvider against an OIDC issuer.
type Provider struct {
	tokens     oauth2.TokenSource
	logoutURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	DiscoveryURL string

	// Tokens supplies the credential under validation. Current fails closed
	// when it cannot produce a token.
	Tokens oauth2.TokenSource

	// LogoutURL is the issuer's end-session endpoint; SignOut is local-only
	// when empty.
	LogoutURL  string
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.Tokens == nil {
		return nil, errors.New("token source is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		tokens:       config.Tokens,
		logoutURL:    config.LogoutURL,
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// Current validates the held credential and returns the proven identity.
// Any failure along the way reports ports.ErrNoIdentity; a transport-level
// error is indistinguishable from a revoked session here and the caller
// treats both as signed out.
func (p *Provider) Current(ctx context.Context) (domainauth.Identity, error) {
	tok, err := p.tokens.Token()
	if err != nil {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}

	// Prefer the ID token when the flow produced one; it is verifiable
	// offline against the issuer's keys.
	if rawID, ok := tok.Extra("id_token").(string); ok && rawID != "" {
		idTok, verifyErr := p.verifier.Verify(ctx, rawID)
		if verifyErr != nil {
			return domainauth.Identity{}, ports.ErrNoIdentity
		}
		return identityFromIDToken(idTok, tok)
	}

	// Otherwise ask the issuer who the access token belongs to.
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	var claims struct {
		Email string `json:"email"`
	}
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	if ui.Subject == "" {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	return domainauth.Identity{
		ID:        ui.Subject,
		Email:     firstNonEmpty(claims.Email, ui.Email),
		ExpiresAt: tok.Expiry,
	}, nil
}

// SignOut notifies the issuer's end-session endpoint when one is configured
// and discards the held credential no matter what the issuer answered, so a
// failed logout cannot leave the provider able to re-authenticate. Failures
// surface so the caller can log them; local state is cleared either way.
func (p *Provider) SignOut(ctx context.Context) error {
	defer func() {
		if d, ok := p.tokens.(interface{ Drop() }); ok {
			d.Drop()
		}
	}()

	if p.logoutURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.logoutURL, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("issuer logout: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("issuer logout: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func identityFromIDToken(idTok *gooidc.IDToken, tok *oauth2.Token) (domainauth.Identity, error) {
	var claims struct {
		Email string `json:"email"`
	}
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	if idTok.Subject == "" {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}

	expiresAt := idTok.Expiry
	if !tok.Expiry.IsZero() && tok.Expiry.Before(expiresAt) {
		expiresAt = tok.Expiry
	}
	return domainauth.Identity{
		ID:        idTok.Subject,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// issuerFromDiscoveryURL strips the well-known suffix so either the issuer or
// its full discovery document URL may be configured.
func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
