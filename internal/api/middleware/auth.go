package middleware

import (
	"context"
	"net/http"
	"strings"

	"joinme-backend/internal/security"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate resolves the bearer token on every request and stores the
// resulting identity in the request context. Requests without a valid
// token are rejected before they reach a handler.
func Authenticate(auth security.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}
			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentIdentity returns the identity stored by Authenticate, or nil when
// the request never passed through it.
func CurrentIdentity(ctx context.Context) *security.Identity {
	identity, _ := ctx.Value(identityKey).(*security.Identity)
	return identity
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
