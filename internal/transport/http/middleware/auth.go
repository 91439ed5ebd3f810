package middleware

import (
	"net/http"
	"strings"

	"github.com/streamview/auth-service/internal/application/session"
	"github.com/streamview/auth-service/internal/domain"
	"github.com/streamview/auth-service/internal/infrastructure/security"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (session.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth gates a route on the access-token cookie and injects the claims
// into the request context. It never refreshes inline: an expired access
// token gets 401 like any other verification failure, and the client is
// expected to hit the refresh route and retry.
func Auth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := security.ReadAccessToken(r)
			if err != nil || strings.TrimSpace(raw) == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			if strings.TrimSpace(claims.UserID) == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
