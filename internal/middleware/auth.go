// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tharavad/dues-api/internal/core"
)

const IdentityKey contextKey = "admin_identity"

// Identity is what a verified bearer credential proves about its holder.
type Identity struct {
	AdminID   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*Identity, error)
}

// Authenticate turns an Authorization header value into an Identity. A
// missing or non-bearer header yields core.ErrUnauthorized; a credential
// the verifier rejects yields core.ErrTokenExpired or core.ErrTokenInvalid.
func Authenticate(
	ctx context.Context,
	verifier TokenVerifier,
	authHeader string,
) (*Identity, error) {
	token := bearerToken(authHeader)
	if token == "" {
		return nil, core.ErrUnauthorized
	}

	identity, err := verifier.VerifyAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, err
		}
		if errors.Is(err, core.ErrTokenInvalid) {
			return nil, err
		}
		return nil, errors.Join(core.ErrTokenInvalid, err)
	}

	return identity, nil
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := Authenticate(
				r.Context(),
				verifier,
				r.Header.Get("Authorization"),
			)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.UnauthorizedError("missing authorization token"))
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func GetAdminID(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.AdminID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetAdminID(ctx) != ""
}
