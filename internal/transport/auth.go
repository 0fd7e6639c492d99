package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type companyKey struct{}

// CompanyResolver resolves a company ID from a bearer token.
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, token string) (string, error)
}

// CompanyFromContext returns the company ID from context, if present.
func CompanyFromContext(ctx context.Context) (string, bool) {
	companyID, ok := ctx.Value(companyKey{}).(string)
	return companyID, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver CompanyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			companyID, err := resolver.ResolveCompany(r.Context(), token)
			if err != nil || companyID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), companyKey{}, companyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NoAuthMiddleware injects a fixed company when auth is disabled.
func NoAuthMiddleware(defaultCompany string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), companyKey{}, defaultCompany)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
