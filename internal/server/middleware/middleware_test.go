package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/server/middleware"
)

func ownerEcho() (http.Handler, *string) {
	var captured string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &captured
}

func TestAuthBearerToken(t *testing.T) {
	tokens := map[string]string{"tok-alpha": "owner-1", "tok-beta": "owner-2"}
	inner, captured := ownerEcho()
	h := middleware.Auth(tokens)(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer tok-beta")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-2", *captured)
}

func TestAuthAPIKeyHeader(t *testing.T) {
	inner, captured := ownerEcho()
	h := middleware.Auth(map[string]string{"tok-alpha": "owner-1"})(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("X-API-Key", "tok-alpha")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1", *captured)
}

func TestAuthRejections(t *testing.T) {
	inner, _ := ownerEcho()
	h := middleware.Auth(map[string]string{"tok-alpha": "owner-1"})(inner)

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"wrong token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic tok-alpha") }},
		{"wrong api key", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthEmptyTokenMapRejectsEverything(t *testing.T) {
	inner, _ := ownerEcho()
	h := middleware.Auth(nil)(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// fakeLimiter records keys and replies from a scripted allowance.
type fakeLimiter struct {
	keys    []string
	allowed bool
	err     error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimitKeysByOwner(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	h := middleware.RateLimit(limiter, 10, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req = req.WithContext(middleware.WithOwner(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "api:owner-1", limiter.keys[0])
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	h := middleware.RateLimit(limiter, 10, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "api:ip:203.0.113.9", limiter.keys[0])
}

func TestRateLimitBlocksWhenExceeded(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	h := middleware.RateLimit(limiter, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	h := middleware.RateLimit(nil, 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
