package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rhuss/vrmaction/pkg/storage"
)

// mockAuthn returns a fixed result and counts its calls.
type mockAuthn struct {
	result AuthResult
	calls  int
}

func (m *mockAuthn) Authenticate(context.Context, *http.Request) AuthResult {
	m.calls++
	return m.result
}

func vote(d AuthDecision, subject string, scopes ...string) *mockAuthn {
	res := AuthResult{Decision: d}
	switch d {
	case Yes:
		res.Identity = &Identity{Subject: subject, Scopes: scopes}
	case No:
		res.Err = ErrUnauthenticated
	}
	return &mockAuthn{result: res}
}

func TestAuthChain(t *testing.T) {
	tests := []struct {
		name         string
		votes        []*mockAuthn
		defaultVote  AuthDecision
		scope        string
		wantDecision AuthDecision
		wantSubject  string
		wantErr      error
		wantCalls    []int
	}{
		{
			name:         "first yes wins",
			votes:        []*mockAuthn{vote(Yes, "alice"), vote(No, "")},
			defaultVote:  No,
			wantDecision: Yes,
			wantSubject:  "alice",
			wantCalls:    []int{1, 0},
		},
		{
			name:         "first no wins",
			votes:        []*mockAuthn{vote(No, ""), vote(Yes, "alice")},
			defaultVote:  Yes,
			wantDecision: No,
			wantErr:      ErrUnauthenticated,
			wantCalls:    []int{1, 0},
		},
		{
			name:         "abstain passes on",
			votes:        []*mockAuthn{vote(Abstain, ""), vote(Yes, "bob")},
			defaultVote:  No,
			wantDecision: Yes,
			wantSubject:  "bob",
			wantCalls:    []int{1, 1},
		},
		{
			name:         "all abstain, default no",
			votes:        []*mockAuthn{vote(Abstain, ""), vote(Abstain, "")},
			defaultVote:  No,
			wantDecision: No,
			wantErr:      ErrUnauthenticated,
			wantCalls:    []int{1, 1},
		},
		{
			name:         "all abstain, default yes",
			votes:        []*mockAuthn{vote(Abstain, "")},
			defaultVote:  Yes,
			wantDecision: Yes,
			wantSubject:  AnonymousSubject,
			wantCalls:    []int{1},
		},
		{
			name:         "empty chain rejects",
			defaultVote:  No,
			wantDecision: No,
			wantErr:      ErrUnauthenticated,
		},
		{
			name:         "scope present",
			votes:        []*mockAuthn{vote(Yes, "alice", "read", "vrmaction")},
			defaultVote:  No,
			scope:        "vrmaction",
			wantDecision: Yes,
			wantSubject:  "alice",
			wantCalls:    []int{1},
		},
		{
			name:         "scope missing",
			votes:        []*mockAuthn{vote(Yes, "alice", "read")},
			defaultVote:  No,
			scope:        "vrmaction",
			wantDecision: No,
			wantErr:      ErrForbidden,
			wantCalls:    []int{1},
		},
		{
			name:         "anonymous skips scope check",
			defaultVote:  Yes,
			scope:        "vrmaction",
			wantDecision: Yes,
			wantSubject:  AnonymousSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &AuthChain{DefaultDecision: tt.defaultVote, RequiredScope: tt.scope}
			for _, v := range tt.votes {
				chain.Authenticators = append(chain.Authenticators, v)
			}

			got := chain.Authenticate(context.Background(), httptest.NewRequest(http.MethodPost, "/mcp", nil))

			if got.Decision != tt.wantDecision {
				t.Fatalf("Decision = %v, want %v", got.Decision, tt.wantDecision)
			}
			if tt.wantSubject != "" && (got.Identity == nil || got.Identity.Subject != tt.wantSubject) {
				t.Errorf("Identity = %+v, want subject %q", got.Identity, tt.wantSubject)
			}
			if !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}

			var calls []int
			for _, v := range tt.votes {
				calls = append(calls, v.calls)
			}
			if diff := cmp.Diff(tt.wantCalls, calls); diff != "" {
				t.Errorf("authenticator calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIdentityAccessors(t *testing.T) {
	tests := []struct {
		name   string
		id     *Identity
		tenant string
		tier   string
		scope  bool
	}{
		{"nil", nil, "", DefaultTier, false},
		{"bare", &Identity{Subject: "alice"}, "", DefaultTier, false},
		{
			name:   "full",
			id:     &Identity{Subject: "bob", ServiceTier: "premium", Scopes: []string{"read", "vrmaction"}, Metadata: map[string]string{MetadataTenantID: "org-1"}},
			tenant: "org-1",
			tier:   "premium",
			scope:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.TenantID(); got != tt.tenant {
				t.Errorf("TenantID() = %q, want %q", got, tt.tenant)
			}
			if got := tt.id.Tier(); got != tt.tier {
				t.Errorf("Tier() = %q, want %q", got, tt.tier)
			}
			if got := tt.id.HasScope("vrmaction"); got != tt.scope {
				t.Errorf("HasScope(vrmaction) = %v, want %v", got, tt.scope)
			}
		})
	}
}

func TestAuthDecisionString(t *testing.T) {
	for d, want := range map[AuthDecision]string{Yes: "yes", No: "no", Abstain: "abstain", AuthDecision(9): "AuthDecision(9)"} {
		if got := d.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(d), got, want)
		}
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}

	ctx = WithIdentity(ctx, &Identity{Subject: "alice"})
	if got := IdentityFromContext(ctx); got == nil || got.Subject != "alice" {
		t.Errorf("got %v, want alice", got)
	}
	if tenant := storage.GetTenant(ctx); tenant != "" {
		t.Errorf("tenant = %q, want none for identity without tenant", tenant)
	}

	ctx = WithIdentity(context.Background(), &Identity{
		Subject:  "bob",
		Metadata: map[string]string{"tenant_id": "studio-7"},
	})
	if tenant := storage.GetTenant(ctx); tenant != "studio-7" {
		t.Errorf("tenant = %q, want studio-7", tenant)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", true},
		{"Bearer", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			token, ok := BearerToken(r)
			if token != tt.token || ok != tt.ok {
				t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
			}
		})
	}
}
