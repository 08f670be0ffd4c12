package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP_EnforcesLimit(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{Requests: 3, Window: time.Minute}, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-mfa", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-mfa", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "rate_limit_exceeded", resp.Code)
	assert.Equal(t, 60, resp.RetryAfter)
}

func TestRateLimitByIP_IsolatesClients(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{Requests: 1, Window: time.Minute}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/auth/signin/google", nil)
	req.RemoteAddr = "198.51.100.8:4000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/signin/google", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitByIP_IgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	handler := RateLimitByIP(RateLimitConfig{Requests: 2, Window: time.Minute}, ipConfig)(okHandler())

	forged := []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"}
	codes := make([]int, 0, len(forged))
	for _, xff := range forged {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-mfa", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", xff)
		req.Header.Set("X-Real-IP", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitByIP_KeysByForwardedClientBehindTrustedProxy(t *testing.T) {
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	handler := RateLimitByIP(RateLimitConfig{Requests: 1, Window: time.Minute}, ipConfig)(okHandler())

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/send-mfa-pin", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.20"))
	assert.Equal(t, http.StatusOK, send("198.51.100.21"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.20"))
}

func TestDefaultRateLimits(t *testing.T) {
	assert.Equal(t, 20, DefaultAuthRateLimit().Requests)
	assert.Equal(t, 5, DefaultPinRateLimit().Requests)
	assert.Equal(t, time.Minute, DefaultPinRateLimit().Window)
}
