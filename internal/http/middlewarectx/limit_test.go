package middlewarectx

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClientBucket(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RateLimitMiddleware(log, l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func limitedChain(l *RateLimiter) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CapturePeer(middleware.RealIP(RateLimitMiddleware(log, l)(ok)))
}

func sendFrom(h http.Handler, peer string, n int, header string) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = peer
		req.Header.Set(header, fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	return codes
}

func TestRateLimitMiddleware_IgnoresForwardedHeadersFromClients(t *testing.T) {
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP", "True-Client-IP"} {
		t.Run(header, func(t *testing.T) {
			h := limitedChain(NewRateLimiter(0.001, 1))
			codes := sendFrom(h, "203.0.113.9:5555", 5, header)
			assert.Equal(t, []int{
				http.StatusOK,
				http.StatusTooManyRequests,
				http.StatusTooManyRequests,
				http.StatusTooManyRequests,
				http.StatusTooManyRequests,
			}, codes)
		})
	}
}

func TestRateLimitMiddleware_TrustedProxyForwardsClient(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	require.NoError(t, l.TrustProxies([]string{"10.0.0.0/8"}))
	h := limitedChain(l)

	codes := sendFrom(h, "10.1.2.3:4000", 3, "X-Forwarded-For")
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK}, codes)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_TrustProxiesInvalidCIDR(t *testing.T) {
	err := NewRateLimiter(1, 1).TrustProxies([]string{"not-a-cidr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TrustProxies")
}
