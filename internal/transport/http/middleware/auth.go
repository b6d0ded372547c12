package middleware

import (
	"context"
	"net/http"

	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/infrastructure/token"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// SessionCookie is the name of the http-only session cookie.
const SessionCookie = "token"

// userSource is the account lookup SessionAuth needs to enforce revocation.
type userSource interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// SessionAuth returns middleware that validates the session cookie and
// injects its claims into the request context. Signature and expiry alone are
// not enough: the user record is loaded on every request so that disabled
// accounts and tokens issued before the account's revocation timestamp are
// rejected everywhere, not just on routes that re-read the user themselves.
func SessionAuth(provider *token.Provider, users userSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			claims, err := provider.Verify(c.Value, token.PurposeSession)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			if !u.Enable || (claims.IssuedAt != nil && claims.IssuedAt.Unix() < u.TokensInvalidAfter) {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*token.Claims)
	return c, ok
}
