package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/storage"
)

func yesChain(id *Identity) *AuthChain {
	return &AuthChain{
		Authenticators:  []Authenticator{&mockAuthn{result: AuthResult{Decision: Yes, Identity: id}}},
		DefaultDecision: No,
	}
}

func TestMiddlewareRejections(t *testing.T) {
	tests := []struct {
		name          string
		chain         *AuthChain
		path          string
		wantStatus    int
		wantType      api.ErrorType
		wantChallenge bool
	}{
		{
			name:       "bypass endpoint skips auth",
			chain:      &AuthChain{DefaultDecision: No},
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:          "no authenticator accepts",
			chain:         &AuthChain{DefaultDecision: No},
			path:          "/mcp",
			wantStatus:    http.StatusUnauthorized,
			wantType:      api.ErrorTypeUnauthenticated,
			wantChallenge: true,
		},
		{
			name: "explicit rejection",
			chain: &AuthChain{Authenticators: []Authenticator{
				&mockAuthn{result: AuthResult{Decision: No, Err: ErrUnauthenticated}},
			}},
			path:          "/mcp",
			wantStatus:    http.StatusUnauthorized,
			wantType:      api.ErrorTypeUnauthenticated,
			wantChallenge: true,
		},
		{
			name: "missing scope",
			chain: &AuthChain{
				Authenticators: []Authenticator{&mockAuthn{result: AuthResult{
					Decision: Yes,
					Identity: &Identity{Subject: "alice", Scopes: []string{"read"}},
				}}},
				DefaultDecision: No,
				RequiredScope:   "vrmaction",
			},
			path:       "/mcp",
			wantStatus: http.StatusForbidden,
			wantType:   api.ErrorTypeForbidden,
		},
		{
			name:       "identity without subject",
			chain:      yesChain(&Identity{}),
			path:       "/mcp",
			wantStatus: http.StatusInternalServerError,
			wantType:   api.ErrorTypeServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Middleware(tt.chain, nil, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if !called {
					t.Error("handler was not called")
				}
				return
			}
			if called {
				t.Error("handler ran for a rejected request")
			}
			if got := rec.Header().Get("WWW-Authenticate"); (got == "Bearer") != tt.wantChallenge {
				t.Errorf("WWW-Authenticate = %q, want challenge %v", got, tt.wantChallenge)
			}
			assertErrorType(t, rec, tt.wantType)
		})
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	chain := yesChain(&Identity{Subject: "alice", Metadata: map[string]string{"tenant_id": "org-1"}})

	var gotSubject, gotTenant string
	handler := Middleware(chain, nil, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := IdentityFromContext(r.Context()); id != nil {
			gotSubject = id.Subject
		}
		gotTenant = storage.GetTenant(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotSubject != "alice" {
		t.Errorf("subject = %q, want alice", gotSubject)
	}
	if gotTenant != "org-1" {
		t.Errorf("tenant = %q, want org-1", gotTenant)
	}
}

func TestMiddlewareRateLimit(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := NewInProcessLimiter(map[string]TierConfig{"limited": {RequestsPerMinute: 2}}, 100)
	limiter.now = func() time.Time { return now }

	chain := yesChain(&Identity{Subject: "alice", ServiceTier: "limited"})
	handler := Middleware(chain, limiter, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
		return rec
	}

	for i := range 2 {
		if rec := call(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	now = start.Add(15 * time.Second)
	rec := call()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "45" {
		t.Errorf("Retry-After = %q, want 45", got)
	}
	assertErrorType(t, rec, api.ErrorTypeTooManyRequests)

	now = start.Add(time.Minute)
	if rec := call(); rec.Code != http.StatusOK {
		t.Errorf("after window: status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareWithoutLimiter(t *testing.T) {
	handler := Middleware(yesChain(&Identity{Subject: "alice"}), nil, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 100 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func assertErrorType(t *testing.T, rec *httptest.ResponseRecorder, want api.ErrorType) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error == nil || body.Error.Type != want {
		t.Errorf("error = %+v, want type %q", body.Error, want)
	}
}
