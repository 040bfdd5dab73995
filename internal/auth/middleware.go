package auth

import (
	"context"
	"net/http"
)

// CookieName is the session cookie carrying the auth token.
const CookieName = "auth-token"

type contextKey string

// principalContextKey is the context key for the authenticated principal.
const principalContextKey contextKey = "principal"

// PrincipalFromContext retrieves the authenticated principal from the
// context, or nil when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalContextKey).(*Principal); ok {
		return p
	}
	return nil
}

// TokenFromRequest extracts the session token from the request cookie.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Middleware creates HTTP middleware that enforces a valid session on every
// wrapped handler. The login endpoint is mounted outside of it.
func Middleware(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := sessions.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
