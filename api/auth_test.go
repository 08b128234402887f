package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agripower/internal/config"
)

type fakeVerifier struct {
	identity Identity
	err      error
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if f.err != nil {
		return Identity{}, f.err
	}
	return f.identity, nil
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	cfg := &config.Config{AppEnv: "development"}
	handler := requireAuth(fakeVerifier{}, cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached without a token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/calculations/power-loss", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	cfg := &config.Config{AppEnv: "development"}
	handler := requireAuth(fakeVerifier{err: errors.New("expired")}, cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/calculations/power-loss", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthAttachesIdentityOnSuccess(t *testing.T) {
	cfg := &config.Config{AppEnv: "development"}
	want := Identity{UserID: 42, RoleID: "standard"}
	var got Identity
	handler := requireAuth(fakeVerifier{identity: want}, cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("expected an identity on the request context")
		}
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/calculations/power-loss", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != want {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
}
