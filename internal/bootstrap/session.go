package bootstrap

import (
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fixify/ui-core/config"
	redisadapter "github.com/fixify/ui-core/internal/adapters/redis"
	"github.com/fixify/ui-core/internal/routegate"
	"github.com/fixify/ui-core/internal/session"
)

// SessionConfig contains configuration for the session controller.
type SessionConfig struct {
	Session     config.SessionConfig
	Backend     *SessionBackend
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// BuildSessionController assembles the session controller from the backend
// and an optional Redis-backed session marker. The controller is not started;
// the caller owns Start and Close.
func BuildSessionController(cfg SessionConfig) (*session.Controller, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("session backend is required")
	}

	opts := session.Options{
		Identity:     cfg.Backend.Identity,
		Profiles:     cfg.Backend.Profiles,
		Events:       cfg.Backend.Events,
		LoadingBound: cfg.Session.LoadingBound,
		Logger:       cfg.Logger,
	}

	if cfg.RedisClient != nil {
		marker, err := redisadapter.NewMarkerStore(redisadapter.MarkerStoreOptions{
			Client:       cfg.RedisClient,
			Key:          cfg.Session.MarkerKey,
			PollInterval: cfg.Session.MarkerPoll,
			Logger:       cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create session marker store: %w", err)
		}
		opts.Marker = marker
	}

	return session.New(opts), nil
}

// BuildRouteGate builds the role-based route gate from configured paths.
func BuildRouteGate(cfg config.RoutesConfig) *routegate.Gate {
	return routegate.New(routegate.Paths{
		Login:        cfg.Login,
		AdminHome:    cfg.AdminHome,
		StaffHome:    cfg.StaffHome,
		CustomerHome: cfg.CustomerHome,
	})
}
