package session

import (
	"context"
	"net/http"
	"strings"

	"calc-service/internal/handlers"
)

type sessionKey struct{}

// BearerToken extracts the bearer token from the Authorization header, or
// "" when absent.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// Require rejects requests without a valid session token and stores the
// resolved session in the request context for handlers downstream.
func Require(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			sess, ok := m.Lookup(token)
			if !ok {
				handlers.WriteError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session stored by Require.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*Session)
	return sess, ok
}
