package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// AuthDecision is an authenticator's vote on a request.
type AuthDecision int

const (
	// Yes accepts the request and ends the chain.
	Yes AuthDecision = iota
	// No rejects the request and ends the chain.
	No
	// Abstain passes the request on to the next authenticator, usually
	// because the credentials are not of a kind it understands.
	Abstain
)

func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	}
	return fmt.Sprintf("AuthDecision(%d)", int(d))
}

const (
	// MetadataTenantID is the Identity.Metadata key that scopes storage.
	MetadataTenantID = "tenant_id"

	// DefaultTier is the rate limit tier of identities without one.
	DefaultTier = "default"

	// AnonymousSubject identifies callers let in by a chain whose
	// DefaultDecision is Yes.
	AnonymousSubject = "anonymous"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// AuthResult is the outcome of one authenticator or of a whole chain.
// Identity is set for Yes, Err for No.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity
	Err      error
}

// Identity is an authenticated caller. Subject is never empty.
type Identity struct {
	Subject     string
	ServiceTier string
	Scopes      []string
	Metadata    map[string]string
}

// TenantID returns the caller's tenant, or "" when unscoped.
func (id *Identity) TenantID() string {
	if id == nil {
		return ""
	}
	return id.Metadata[MetadataTenantID]
}

// HasScope reports whether scope was granted to the caller.
func (id *Identity) HasScope(scope string) bool {
	return id != nil && slices.Contains(id.Scopes, scope)
}

// Tier returns the rate limit tier, DefaultTier when none is set.
func (id *Identity) Tier() string {
	if id == nil || id.ServiceTier == "" {
		return DefaultTier
	}
	return id.ServiceTier
}

// Authenticator votes on the credentials carried by a request.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// AuthChain asks its authenticators in order until one votes Yes or No.
type AuthChain struct {
	Authenticators []Authenticator

	// DefaultDecision applies when every authenticator abstains. Yes
	// admits the caller as AnonymousSubject.
	DefaultDecision AuthDecision

	// RequiredScope, when set, downgrades an authenticator's Yes to a
	// forbidden No if the identity lacks the scope. Anonymous callers are
	// not checked.
	RequiredScope string
}

// Authenticate implements Authenticator.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, a := range c.Authenticators {
		res := a.Authenticate(ctx, r)
		switch res.Decision {
		case Abstain:
			continue
		case Yes:
			if c.RequiredScope != "" && !res.Identity.HasScope(c.RequiredScope) {
				return AuthResult{Decision: No, Err: fmt.Errorf("%w: missing scope %q", ErrForbidden, c.RequiredScope)}
			}
		}
		return res
	}

	if c.DefaultDecision == Yes {
		return AuthResult{Decision: Yes, Identity: &Identity{Subject: AnonymousSubject, ServiceTier: DefaultTier}}
	}
	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}
