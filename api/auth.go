package api

import (
	"context"
	"net/http"
	"strings"

	"agripower/internal/apierr"
	"agripower/internal/config"
)

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	UserID int64
	RoleID string
}

// TokenVerifier is the external collaborator contract for bearer-token
// verification; credential issuance and session-token minting live outside
// this service. Production wiring injects a concrete JWT/opaque verifier;
// tests inject a fake.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type identityContextKey struct{}

// WithIdentity stores the authenticated identity on the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext recovers the identity attached by the auth
// middleware. Handlers never read user_id from the request body for
// mutating operations; this is the only source of truth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// requireAuth extracts and verifies the bearer token, attaching the
// resulting Identity to the request context before calling next. Missing
// or invalid tokens short-circuit with a 401 JSend envelope.
func requireAuth(verifier TokenVerifier, cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, cfg, apierr.NewAuthenticationMissing("Token de autenticación requerido"))
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeError(w, cfg, apierr.NewAuthenticationMissing("Token de autenticación inválido o expirado"))
				return
			}

			r = r.WithContext(WithIdentity(r.Context(), id))
			next.ServeHTTP(w, r)
		})
	}
}
