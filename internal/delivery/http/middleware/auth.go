package middleware

import (
	"context"
	"net/http"
	"strings"

	h "munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// SetClaims returns a context with the verified token claims set. Used by
// auth middleware.
func SetClaims(ctx context.Context, claims domain.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the authenticated caller's claims from the
// context, if present.
func ClaimsFromContext(ctx context.Context) (domain.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(domain.TokenClaims)
	return claims, ok
}

// bearerToken extracts the token from the Authorization header. It returns
// an empty string when the header is absent or not in Bearer format.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// caller's claims in the request context. If the token is missing or invalid,
// it responds with 401 and does not call next. Malformed, forged, and expired
// tokens are indistinguishable to the client.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing or malformed authorization header")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetClaims(r.Context(), claims)))
		}
	}
}

// OptionalAuth sets the caller's claims when a valid Bearer token is present
// and otherwise passes the request through anonymously. An invalid token is
// treated the same as no token.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := verifier.Verify(token); err == nil {
					r = r.WithContext(SetClaims(r.Context(), claims))
				}
			}
			next(w, r)
		}
	}
}

// RequireRole returns a wrapper that rejects callers whose role does not
// match. It must run after RequireAuth; if no claims are in the context it
// fails closed with 403.
func RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != role {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient permissions")
				return
			}
			next(w, r)
		}
	}
}
