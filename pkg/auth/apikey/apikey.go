// Package apikey authenticates bearer tokens against a static list of API
// keys. Only SHA-256 digests of the keys are kept in memory.
package apikey

import (
	"context"
	"crypto/sha256"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/rhuss/vrmaction/pkg/auth"
)

// Entry configures one API key and the identity it grants.
type Entry struct {
	Key         string
	Subject     string // default: "apikey-<index>"
	TenantID    string // scopes the action history; empty means shared
	ServiceTier string // rate limit tier; empty means "default"
	Scopes      []string
}

// Authenticator validates bearer tokens against the configured keys.
type Authenticator struct {
	identities map[[sha256.Size]byte]auth.Identity
}

// New hashes the keys of entries and returns the authenticator. Empty and
// duplicate keys are rejected.
func New(entries []Entry) (*Authenticator, error) {
	a := &Authenticator{identities: make(map[[sha256.Size]byte]auth.Identity, len(entries))}
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("api key %d: empty key", i)
		}
		digest := sha256.Sum256([]byte(e.Key))
		if _, dup := a.identities[digest]; dup {
			return nil, fmt.Errorf("api key %d: duplicate key", i)
		}
		a.identities[digest] = e.identity(i)
	}
	return a, nil
}

func (e Entry) identity(index int) auth.Identity {
	id := auth.Identity{
		Subject:     e.Subject,
		ServiceTier: e.ServiceTier,
		Scopes:      slices.Clone(e.Scopes),
	}
	if id.Subject == "" {
		id.Subject = fmt.Sprintf("apikey-%d", index)
	}
	if e.TenantID != "" {
		id.Metadata = map[string]string{auth.MetadataTenantID: e.TenantID}
	}
	return id
}

// Len returns the number of configured keys.
func (a *Authenticator) Len() int { return len(a.identities) }

// Authenticate abstains without a bearer token, votes Yes for a known key
// and No for any other bearer token. Lookups are by digest, so the timing
// of a failed lookup does not depend on the plaintext key.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	token, ok := auth.BearerToken(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	id, found := a.identities[sha256.Sum256([]byte(token))]
	if !found {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	// Handlers get their own copy of the configured identity.
	id.Scopes = slices.Clone(id.Scopes)
	id.Metadata = maps.Clone(id.Metadata)
	return auth.AuthResult{Decision: auth.Yes, Identity: &id}
}
