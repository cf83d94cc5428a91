package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/vrmaction/pkg/auth"
	"github.com/rhuss/vrmaction/pkg/auth/apikey"
	"github.com/rhuss/vrmaction/pkg/auth/jwt"
	"github.com/rhuss/vrmaction/pkg/config"
	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/storage"
	"github.com/rhuss/vrmaction/pkg/storage/memory"
	"github.com/rhuss/vrmaction/pkg/storage/postgres"
)

// newStore builds the action history store. It returns a nil Store when
// the history is disabled.
func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "memory":
		slog.Info("storage enabled", "type", "memory", "max_size", cfg.MaxSize)
		return memory.New(cfg.MaxSize), nil
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
		return store, nil
	case "", "none":
		slog.Info("storage disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func engineConfig(cfg config.EngineConfig) engine.Config {
	return engine.Config{
		DefaultIntensity:  cfg.DefaultIntensity,
		DefaultDuration:   cfg.DefaultDuration,
		SequenceIntensity: cfg.SequenceIntensity,
		SequenceDuration:  cfg.SequenceDuration,
	}
}

// newAuthChain builds the authenticator chain for the http transport. It
// returns nil when neither authentication nor rate limiting is configured.
// Rate limiting without authentication runs on an anonymous chain.
func newAuthChain(cfg config.AuthConfig) (*auth.AuthChain, error) {
	chain := &auth.AuthChain{
		DefaultDecision: auth.No,
		RequiredScope:   cfg.RequiredScope,
	}

	switch cfg.Type {
	case "apikey":
		entries := make([]apikey.Entry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			entries = append(entries, apikey.Entry{
				Key:         k.Key,
				Subject:     k.Subject,
				TenantID:    k.TenantID,
				ServiceTier: k.ServiceTier,
				Scopes:      k.Scopes,
			})
		}
		keys, err := apikey.New(entries)
		if err != nil {
			return nil, err
		}
		chain.Authenticators = append(chain.Authenticators, keys)
	case "jwt":
		chain.Authenticators = append(chain.Authenticators, jwt.New(jwt.Config{
			Issuer:      cfg.JWT.Issuer,
			Audience:    cfg.JWT.Audience,
			JWKSURL:     cfg.JWT.JWKSURL,
			UserClaim:   cfg.JWT.UserClaim,
			TenantClaim: cfg.JWT.TenantClaim,
			TierClaim:   cfg.JWT.TierClaim,
			ScopesClaim: cfg.JWT.ScopesClaim,
			CacheTTL:    cfg.JWT.CacheTTL,

			MinRefreshInterval: cfg.JWT.MinRefresh,
			Leeway:             cfg.JWT.Leeway,
		}))
	default:
		if !rateLimited(cfg.RateLimit) {
			return nil, nil
		}
		chain.DefaultDecision = auth.Yes
		chain.RequiredScope = ""
	}
	return chain, nil
}

// newRateLimiter returns nil when no limits are configured.
func newRateLimiter(cfg config.RateLimitConfig) auth.RateLimiter {
	if !rateLimited(cfg) {
		return nil
	}
	tiers := make(map[string]auth.TierConfig, len(cfg.Tiers))
	for name, rpm := range cfg.Tiers {
		tiers[name] = auth.TierConfig{RequestsPerMinute: rpm}
	}
	return auth.NewInProcessLimiter(tiers, cfg.DefaultRPM)
}

func rateLimited(cfg config.RateLimitConfig) bool {
	if cfg.DefaultRPM > 0 {
		return true
	}
	for _, rpm := range cfg.Tiers {
		if rpm > 0 {
			return true
		}
	}
	return false
}
