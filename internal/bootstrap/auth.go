package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fixify/ui-core/config"
	"github.com/fixify/ui-core/internal/adapters/devauth"
	"github.com/fixify/ui-core/internal/adapters/hostedapi"
	"github.com/fixify/ui-core/internal/adapters/oidc"
	"github.com/fixify/ui-core/internal/data"
	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// SessionBackend bundles the auth surfaces built for the configured mode.
// Events, Files, and Tokens are nil when the mode does not provide them.
type SessionBackend struct {
	Identity ports.IdentityProvider
	Profiles ports.ProfileStore
	Events   ports.AuthEvents
	Files    ports.FileStore

	// Tokens is where the sign-in flow installs the bearer credential.
	// Nil in mock mode, which needs no credential.
	Tokens *hostedapi.TokenHolder
}

// Close releases backend resources such as the auth event stream.
func (b *SessionBackend) Close() {
	if s, ok := b.Events.(*hostedapi.EventStream); ok && s != nil {
		s.Close()
	}
}

// SessionBackendConfig contains configuration for the session backend.
type SessionBackendConfig struct {
	Auth   config.AuthConfig
	IsDev  bool
	DB     *sql.DB
	Logger *slog.Logger
}

// BuildSessionBackend wires the identity provider, profile store, and
// optional event stream for the configured auth mode.
func BuildSessionBackend(ctx context.Context, cfg SessionBackendConfig) (*SessionBackend, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeHosted:
		return buildHostedBackend(cfg)

	case config.AuthModeOIDC:
		return buildOIDCBackend(ctx, cfg)

	case config.AuthModeMock:
		return buildMockBackend(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Auth.Mode)
	}
}

func buildHostedBackend(cfg SessionBackendConfig) (*SessionBackend, error) {
	tokens := hostedapi.NewTokenHolder()

	client, err := hostedapi.NewClient(hostedapi.Config{
		BaseURL: cfg.Auth.Hosted.BaseURL,
		APIKey:  cfg.Auth.Hosted.APIKey,
		Tokens:  tokens,
		Timeout: cfg.Auth.Hosted.Timeout,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create hosted client: %w", err)
	}

	backend := &SessionBackend{
		Identity: client,
		Profiles: client,
		Files:    client,
		Tokens:   tokens,
	}

	if cfg.Auth.Hosted.Events {
		stream, streamErr := hostedapi.NewEventStream(hostedapi.EventStreamConfig{
			BaseURL: cfg.Auth.Hosted.BaseURL,
			APIKey:  cfg.Auth.Hosted.APIKey,
			Logger:  cfg.Logger,
		})
		if streamErr != nil {
			return nil, fmt.Errorf("create auth event stream: %w", streamErr)
		}
		backend.Events = stream
	}

	return backend, nil
}

func buildOIDCBackend(ctx context.Context, cfg SessionBackendConfig) (*SessionBackend, error) {
	if cfg.DB == nil {
		return nil, errors.New("oidc auth mode requires a database for profiles")
	}

	tokens := hostedapi.NewTokenHolder()

	provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     cfg.Auth.OIDC.ClientID,
		DiscoveryURL: cfg.Auth.OIDC.DiscoveryURL,
		Tokens:       tokens,
		LogoutURL:    cfg.Auth.OIDC.LogoutURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create oidc provider: %w", err)
	}

	return &SessionBackend{
		Identity: provider,
		Profiles: data.NewProfileRepo(cfg.DB),
		Tokens:   tokens,
	}, nil
}

func buildMockBackend(ctx context.Context, cfg SessionBackendConfig) (*SessionBackend, error) {
	if !cfg.IsDev {
		return nil, errors.New("mock auth mode is only allowed in development")
	}
	if cfg.DB == nil {
		return nil, errors.New("mock auth mode requires a database for profiles")
	}

	provider, err := devauth.NewProvider(devauth.Config{
		UserID:          cfg.Auth.DevAuth.UserID,
		Email:           cfg.Auth.DevAuth.Email,
		SessionDuration: cfg.Auth.DevAuth.SessionDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("create dev auth provider: %w", err)
	}

	profiles := data.NewProfileRepo(cfg.DB)

	// Make sure the dev identity resolves to a profile so the first
	// reconcile does not fail closed. Dev users get the admin role.
	devProfile := auth.Profile{
		ID:    cfg.Auth.DevAuth.UserID,
		Email: cfg.Auth.DevAuth.Email,
		Role:  auth.RoleAdmin,
	}
	if _, err := profiles.Upsert(ctx, devProfile); err != nil {
		return nil, fmt.Errorf("seed dev profile: %w", err)
	}
	if _, err := profiles.UpdateRole(ctx, devProfile.ID, auth.RoleAdmin); err != nil {
		return nil, fmt.Errorf("promote dev profile: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("mock auth mode enabled", "user_id", cfg.Auth.DevAuth.UserID)
	}

	return &SessionBackend{
		Identity: provider,
		Profiles: profiles,
	}, nil
}
