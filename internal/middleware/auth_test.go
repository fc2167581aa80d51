package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hearth/internal/auth"
	"hearth/internal/database"
	"hearth/internal/store"
)

func setupAuthTest(t *testing.T) (*store.SessionStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	sessions, users := setupAuthTest(t)
	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "authentication required") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	sessions, users := setupAuthTest(t)
	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an unknown token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: "not-a-real-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	sessions, users := setupAuthTest(t)
	user, err := users.Create("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.AuthContext
	handler := RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected auth context on the request")
		}
		got = ac
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != user.ID || got.Username != "alice" || got.SessionID != sess.ID {
		t.Errorf("auth context = %+v", got)
	}
}
