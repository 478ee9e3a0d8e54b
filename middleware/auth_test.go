package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expensedash/api"
	"expensedash/models"
	"expensedash/security"
	"expensedash/session"
)

// newTestProbe wires a probe against an in-memory session store and a
// fake backend whose /auth/me either accepts or rejects the token.
func newTestProbe(t *testing.T, acceptToken string) (*SessionProbe, *session.Store) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("Unexpected backend path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer "+acceptToken {
			http.Error(w, `{"detail":"Invalid auth token"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.User{ID: 1, Username: "alice", Role: "manager"})
	}))
	t.Cleanup(backend.Close)

	cipher := security.NewTokenCipher("test-session-key-1234567890123456")
	store, err := session.Open(":memory:", cipher, time.Hour)
	if err != nil {
		t.Fatalf("Error opening session store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &SessionProbe{Sessions: store, Backend: api.NewClient(backend.URL)}, store
}

func okHandler(t *testing.T, sawUser *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			t.Error("Expected user in context")
		} else if user.Username != "alice" {
			t.Errorf("Expected username 'alice', got '%s'", user.Username)
		}
		if GetTokenFromContext(r) == "" {
			t.Error("Expected token in context")
		}
		*sawUser = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSessionWithValidCookie(t *testing.T) {
	probe, store := newTestProbe(t, "good-token")

	id, err := store.Create("good-token", "alice", "manager")
	if err != nil {
		t.Fatalf("Error creating session: %v", err)
	}

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	w := httptest.NewRecorder()

	var sawUser bool
	probe.RequireSession(okHandler(t, &sawUser)).ServeHTTP(w, req)

	if !sawUser {
		t.Error("Handler was not reached")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRequireSessionWithoutCookieRedirectsPages(t *testing.T) {
	probe, _ := newTestProbe(t, "good-token")

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()

	called := false
	probe.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(w, req)

	if called {
		t.Error("Handler should not run without a session")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect status 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Expected redirect to /login, got '%s'", loc)
	}
}

func TestRequireSessionWithoutCookieReturns401ForAPI(t *testing.T) {
	probe, _ := newTestProbe(t, "good-token")

	req := httptest.NewRequest("GET", "/api/expenses", nil)
	w := httptest.NewRecorder()

	probe.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run without a session")
	})).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestRequireSessionDropsSessionRejectedByBackend(t *testing.T) {
	probe, store := newTestProbe(t, "good-token")

	// The stored token is not the one the backend accepts
	id, err := store.Create("revoked-token", "alice", "manager")
	if err != nil {
		t.Fatalf("Error creating session: %v", err)
	}

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	w := httptest.NewRecorder()

	probe.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run with a revoked token")
	})).ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect status 303, got %d", w.Code)
	}

	// The session should be gone, not just rejected once
	if _, err := store.Get(id); err != session.ErrNotFound {
		t.Errorf("Expected session to be deleted, got %v", err)
	}
}
