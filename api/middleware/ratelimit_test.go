package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webclipper-api/pkg/featureflags"
)

func enabled(on bool) featureflags.Manager {
	return featureflags.NewStaticManager(map[featureflags.FeatureFlag]bool{featureflags.RateLimitEnabled: on})
}

func limited(limiter *RateLimiter, flags featureflags.Manager) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return FeatureFlagsMiddleware(flags)(RateLimitMiddleware(limiter)(ok))
}

func request(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/messages", nil)
	req.RemoteAddr = remote
	return req
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	defer rl.Stop()
	clock := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("127.0.0.1"))
	assert.False(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("192.168.1.1"), "buckets are per client")

	clock = clock.Add(time.Second)
	assert.True(t, rl.Allow("127.0.0.1"), "one token refills per second")
	assert.False(t, rl.Allow("127.0.0.1"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	clock := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return clock }

	rl.Allow("a")
	clock = clock.Add(idleAfter / 2)
	rl.Allow("b")
	clock = clock.Add(idleAfter/2 + time.Second)
	rl.evictIdle()

	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()
	handler := limited(rl, enabled(true))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request("127.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Burst"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("127.0.0.1:5678"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, request("10.0.0.9:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_DisabledByFlag(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Stop()
	handler := limited(rl, enabled(false))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request("127.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		setupReq   func(*http.Request)
		expectedIP string
	}{
		{
			name: "uses the last X-Forwarded-For hop",
			setupReq: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.2")
			},
			expectedIP: "198.51.100.2",
		},
		{
			name: "uses X-Real-IP header",
			setupReq: func(r *http.Request) {
				r.Header.Set("X-Real-IP", "203.0.113.1")
			},
			expectedIP: "203.0.113.1",
		},
		{
			name: "strips the port from RemoteAddr",
			setupReq: func(r *http.Request) {
				r.RemoteAddr = "192.168.1.1:1234"
			},
			expectedIP: "192.168.1.1",
		},
		{
			name: "keeps a RemoteAddr without port",
			setupReq: func(r *http.Request) {
				r.RemoteAddr = "pipe"
			},
			expectedIP: "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			tt.setupReq(req)
			assert.Equal(t, tt.expectedIP, extractIP(req))
		})
	}
}
