package auth

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// window is the length of a rate limit window.
const window = time.Minute

// RateLimiter decides whether an identity may make another request.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// TierConfig holds rate limit settings for a service tier.
type TierConfig struct {
	RequestsPerMinute int
}

// LimitError rejects a request over its tier limit. It matches
// ErrTooManyRequests with errors.Is.
type LimitError struct {
	Tier       string
	Limit      int
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%v: %d requests per minute for tier %q", ErrTooManyRequests, e.Limit, e.Tier)
}

func (e *LimitError) Is(target error) bool { return target == ErrTooManyRequests }

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1, for
// the Retry-After header.
func (e *LimitError) RetryAfterSeconds() int {
	return max(1, int(math.Ceil(e.RetryAfter.Seconds())))
}

// InProcessLimiter counts requests per subject and tier in fixed one-minute
// windows. Counts live in process memory and are not shared between
// replicas.
type InProcessLimiter struct {
	tiers      map[string]TierConfig
	defaultRPM int
	now        func() time.Time

	mu        sync.Mutex
	windows   map[string]*counter
	lastPrune time.Time
}

type counter struct {
	start time.Time
	count int
}

// NewInProcessLimiter creates a limiter. Tiers without an entry use
// defaultRPM; a limit of zero or less means unlimited.
func NewInProcessLimiter(tiers map[string]TierConfig, defaultRPM int) *InProcessLimiter {
	return &InProcessLimiter{
		tiers:      tiers,
		defaultRPM: defaultRPM,
		now:        time.Now,
		windows:    make(map[string]*counter),
	}
}

// Limit returns the requests per minute allowed for tier, zero when
// unlimited.
func (l *InProcessLimiter) Limit(tier string) int {
	if tc, ok := l.tiers[tier]; ok {
		return max(0, tc.RequestsPerMinute)
	}
	return max(0, l.defaultRPM)
}

// Allow counts the request and returns a *LimitError once the identity's
// tier limit is exhausted for the current window.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := identity.Tier()
	limit := l.Limit(tier)
	if limit == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	key := tier + "/" + identity.Subject
	c := l.windows[key]
	if c == nil || now.Sub(c.start) >= window {
		l.windows[key] = &counter{start: now, count: 1}
		return nil
	}
	if c.count >= limit {
		return &LimitError{Tier: tier, Limit: limit, RetryAfter: c.start.Add(window).Sub(now)}
	}
	c.count++
	return nil
}

// prune drops expired windows, at most once per window. Must be called
// with l.mu held.
func (l *InProcessLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < window {
		return
	}
	for key, c := range l.windows {
		if now.Sub(c.start) >= window {
			delete(l.windows, key)
		}
	}
	l.lastPrune = now
}
