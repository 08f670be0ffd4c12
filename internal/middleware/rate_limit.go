package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultAuthRateLimit returns the limit for the OAuth sign-in round trip (20 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
	}
}

// DefaultPinRateLimit returns the limit for PIN issuance and verification (5 requests per minute)
func DefaultPinRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// The key is resolved with pkghttp.ExtractClientIP, so forwarding headers only
// count when the peer is one of ipConfig's trusted proxies.
func RateLimitByIP(config RateLimitConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	retryAfter := int(config.Window.Seconds())

	return httprate.Limit(
		config.Requests,
		config.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, ipConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded. Please try again later.", retryAfter)
		}),
	)
}
