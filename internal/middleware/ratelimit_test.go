// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(t.Context(), nil, RateLimitConfig{
		Limit: Per(2, time.Minute, 2),
	})
	h := rl.Handler(okHandler())

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	limited := send("10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
}

func TestRateLimiterBypass(t *testing.T) {
	rl := NewRateLimiter(t.Context(), nil, RateLimitConfig{
		Limit: Per(1, time.Minute, 1),
		BypassFunc: func(r *http.Request) bool {
			return r.URL.Path == "/healthz"
		},
	})
	h := rl.Handler(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterInvalidLimit(t *testing.T) {
	closed := NewRateLimiter(t.Context(), nil, RateLimitConfig{Limit: Per(0, time.Minute, 1)})
	rec := httptest.NewRecorder()
	closed.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	open := NewRateLimiter(t.Context(), nil, RateLimitConfig{Limit: Per(0, time.Minute, 1), FailOpen: true})
	rec = httptest.NewRecorder()
	open.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ratelimit:ip:192.0.2.1", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.7")
	assert.Equal(t, "ratelimit:ip:198.51.100.7", KeyByIP(req))
}

func TestRateLimiterSweeperStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rl := NewRateLimiter(ctx, nil, RateLimitConfig{Limit: Per(1, time.Minute, 1)})

	cancel()

	select {
	case <-rl.fallback.done:
	case <-time.After(time.Second):
		t.Fatal("sweeper still running after cancel")
	}
}

func TestLocalLimiterSweepDropsIdleEntries(t *testing.T) {
	l := newLocalLimiter(t.Context())

	_, err := l.allow("idle", Per(1, time.Minute, 1))
	require.NoError(t, err)

	l.sweep(time.Now().Add(time.Hour).Unix())

	_, ok := l.limiters.Load("idle")
	assert.False(t, ok)
}
