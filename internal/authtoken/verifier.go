// Package authtoken provides a minimal concrete TokenVerifier so the
// daemon can boot standalone. Real deployments inject their own
// implementation (JWT, OAuth introspection, ...); this one exists only to
// satisfy the api.TokenVerifier contract with the simplest possible
// shared-secret scheme, per the signing secret described in the
// environment configuration.
package authtoken

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"agripower/api"
)

// SharedSecretVerifier verifies tokens of the form "<user_id>:<role_id>:<secret>"
// against a single configured secret. It does not implement expiry,
// revocation, or signing — callers needing those own a real verifier.
type SharedSecretVerifier struct {
	Secret string
}

// Verify splits the token into its three colon-separated fields and checks
// the trailing secret matches.
func (v SharedSecretVerifier) Verify(_ context.Context, token string) (api.Identity, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 {
		return api.Identity{}, errors.New("malformed token")
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return api.Identity{}, errors.New("malformed user id")
	}
	if parts[2] != v.Secret || v.Secret == "" {
		return api.Identity{}, errors.New("secret mismatch")
	}
	return api.Identity{UserID: userID, RoleID: parts[1]}, nil
}
