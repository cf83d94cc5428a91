package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/debug"
	"github.com/rhuss/vrmaction/pkg/observability"
	"github.com/rhuss/vrmaction/pkg/transport"
)

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// Middleware authenticates every request outside bypassEndpoints with chain
// and, when limiter is non-nil, enforces the caller's tier quota. The
// resolved identity and its tenant are attached to the request context.
func Middleware(chain *AuthChain, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]struct{}, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := bypass[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			id, apiErr := resolve(chain, r)
			if apiErr != nil {
				if apiErr.Type == api.ErrorTypeUnauthenticated {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				transport.WriteError(w, apiErr)
				return
			}

			if limiter != nil {
				if err := limiter.Allow(r.Context(), id); err != nil {
					rejectRateLimited(w, id, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// resolve runs the chain and turns anything short of an accepted identity
// into the error the caller sees.
func resolve(chain *AuthChain, r *http.Request) (*Identity, *api.APIError) {
	result := chain.Authenticate(r.Context(), r)

	switch {
	case result.Decision == No && errors.Is(result.Err, ErrForbidden):
		slog.Warn("authorization failed", "path", r.URL.Path, "remote_addr", r.RemoteAddr, "error", result.Err)
		return nil, api.NewForbiddenError("access denied")
	case result.Decision == No:
		slog.Warn("authentication failed", "path", r.URL.Path, "remote_addr", r.RemoteAddr, "error", result.Err)
		return nil, api.NewUnauthenticatedError("authentication required")
	case result.Decision != Yes || result.Identity == nil:
		return nil, api.NewUnauthenticatedError("authentication required")
	case result.Identity.Subject == "":
		slog.Error("authenticator returned identity with empty subject", "path", r.URL.Path)
		return nil, api.NewServerError("internal authentication error")
	}

	debug.Log("auth", "authenticated",
		"subject", result.Identity.Subject,
		"tier", result.Identity.Tier(),
		"path", r.URL.Path,
	)
	return result.Identity, nil
}

func rejectRateLimited(w http.ResponseWriter, id *Identity, err error) {
	tier := id.Tier()
	slog.Warn("rate limit exceeded", "subject", id.Subject, "tier", tier)
	observability.RateLimitRejectedTotal.WithLabelValues(tier).Inc()

	retryAfter := int(window.Seconds())
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		retryAfter = limitErr.RetryAfterSeconds()
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	transport.WriteError(w, api.NewTooManyRequestsError("rate limit exceeded"))
}
