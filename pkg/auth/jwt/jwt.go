// Package jwt authenticates OIDC bearer tokens. Signatures are verified
// against keys from a JWKS endpoint; RSA (RS256/384/512) and ECDSA
// (ES256/384/512) keys are supported.
//
// Claim names for subject, tenant, service tier and scopes are
// configurable, so tokens from any issuer can be mapped onto an
// auth.Identity.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/vrmaction/pkg/auth"
	"github.com/rhuss/vrmaction/pkg/debug"
)

// Signing algorithms accepted by the authenticator.
var validMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Config holds the JWT authenticator configuration.
type Config struct {
	// Issuer is the expected iss claim. Empty disables the check.
	Issuer string

	// Audience is the expected aud claim. Empty disables the check.
	Audience string

	// JWKSURL serves the signing keys.
	JWKSURL string

	// Claim names. Defaults: "sub", "tenant_id", "service_tier", "scope".
	// The scopes claim may be a space-separated string or an array.
	UserClaim   string
	TenantClaim string
	TierClaim   string
	ScopesClaim string

	// CacheTTL is how long fetched keys are trusted. Default: 1 hour.
	CacheTTL time.Duration

	// MinRefreshInterval throttles refetches triggered by unknown key IDs.
	// Default: 1 minute.
	MinRefreshInterval time.Duration

	// Leeway tolerates clock skew on exp, nbf and iat. Default: 0.
	Leeway time.Duration

	// HTTPClient fetches the JWKS. Default: a client with a 10s timeout.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.UserClaim == "" {
		c.UserClaim = "sub"
	}
	if c.TenantClaim == "" {
		c.TenantClaim = "tenant_id"
	}
	if c.TierClaim == "" {
		c.TierClaim = "service_tier"
	}
	if c.ScopesClaim == "" {
		c.ScopesClaim = "scope"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.MinRefreshInterval <= 0 {
		c.MinRefreshInterval = time.Minute
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
}

// Authenticator validates JWT bearer tokens.
type Authenticator struct {
	config Config
	keys   *keySet
	parser *jwtlib.Parser
}

// New creates a JWT authenticator. Keys are fetched lazily on the first
// token.
func New(cfg Config) *Authenticator {
	cfg.applyDefaults()

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods(validMethods),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}

	return &Authenticator{
		config: cfg,
		keys:   newKeySet(cfg.JWKSURL, cfg.HTTPClient, cfg.CacheTTL, cfg.MinRefreshInterval),
		parser: jwtlib.NewParser(opts...),
	}
}

// Authenticate abstains without a bearer token and otherwise votes Yes or
// No depending on whether the token verifies. Tokens that are not JWTs at
// all also get No, so put the JWT authenticator after API keys in a chain.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) auth.AuthResult {
	raw, ok := auth.BearerToken(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if raw == "" {
		return deny(errors.New("empty bearer token"))
	}

	claims := jwtlib.MapClaims{}
	_, err := a.parser.ParseWithClaims(raw, claims, func(token *jwtlib.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return a.keys.key(ctx, kid)
	})
	if err != nil {
		debug.Log("auth", "jwt rejected", "error", err)
		return deny(fmt.Errorf("invalid JWT: %w", err))
	}

	id, err := a.identity(claims)
	if err != nil {
		return deny(err)
	}
	return auth.AuthResult{Decision: auth.Yes, Identity: id}
}

func (a *Authenticator) identity(claims jwtlib.MapClaims) (*auth.Identity, error) {
	subject := stringClaim(claims, a.config.UserClaim)
	if subject == "" {
		return nil, fmt.Errorf("JWT missing %q claim", a.config.UserClaim)
	}

	id := &auth.Identity{
		Subject:     subject,
		ServiceTier: stringClaim(claims, a.config.TierClaim),
		Scopes:      scopesClaim(claims, a.config.ScopesClaim),
	}
	if tenant := stringClaim(claims, a.config.TenantClaim); tenant != "" {
		id.Metadata = map[string]string{auth.MetadataTenantID: tenant}
	}
	return id, nil
}

func deny(err error) auth.AuthResult {
	return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("%w: %v", auth.ErrUnauthenticated, err)}
}

func stringClaim(claims jwtlib.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}

// scopesClaim accepts "a b c" as well as ["a", "b", "c"]. Non-string
// array items are ignored.
func scopesClaim(claims jwtlib.MapClaims, name string) []string {
	var scopes []string
	switch v := claims[name].(type) {
	case string:
		scopes = strings.Fields(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				scopes = append(scopes, s)
			}
		}
	}
	if len(scopes) == 0 {
		return nil
	}
	return scopes
}
