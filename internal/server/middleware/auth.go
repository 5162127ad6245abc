package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// ownerKey is the context key under which the authenticated owner ID is
// stored.
type ownerKey struct{}

// OwnerFromContext returns the owner ID placed in the context by Auth, or ""
// when the request was not authenticated.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// WithOwner returns a context carrying the given owner ID. Exported for
// handler tests that bypass the middleware.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// Auth returns middleware that validates API requests using a Bearer token in
// the Authorization header or a static key in the X-API-Key header. tokens
// maps each accepted token to the owner ID it acts as; the matched owner is
// stored in the request context. If tokens is empty, all requests are
// rejected.
func Auth(tokens map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "missing authentication token")
				return
			}

			owner, ok := matchToken(tokens, token)
			if !ok {
				writeUnauthorized(w, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// matchToken compares the presented token against every configured token in
// constant time, so response timing does not leak which prefix matched.
func matchToken(tokens map[string]string, presented string) (string, bool) {
	var (
		owner string
		found bool
	)
	for token, o := range tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(presented)) == 1 {
			owner = o
			found = true
		}
	}
	return owner, found
}

// extractToken looks for a token in the Authorization header (Bearer scheme)
// or in the X-API-Key header.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}

	return ""
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
