package transport

import (
	"context"
	"net/http"
)

type userKey struct{}

// UserIDFromContext returns the acting user ID from context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok
}

// UserMiddleware extracts X-User-Id and stores it in context. The user is
// informational (attribution on versions and audit entries); authorization
// happens at the company level.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID != "" {
			ctx := context.WithValue(r.Context(), userKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
