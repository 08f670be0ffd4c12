package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/createconomy/cemvp/pkg/http"
	"github.com/stretchr/testify/assert"
)

// Forwarding headers must only be trusted from configured proxies

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		proxies    []string
		nilConfig  bool
		want       string
	}{
		{
			name:       "direct connection ignores headers",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4, 5.6.7.8",
			xRealIP:    "192.168.1.1",
			proxies:    []string{"10.0.0.0/8", "127.0.0.1/32"},
			want:       "203.0.113.10",
		},
		{
			name:       "trusted proxy uses first forwarded entry",
			remoteAddr: "10.0.0.5:54321",
			xff:        "203.0.113.42, 203.0.113.43, 10.0.0.5",
			proxies:    []string{"10.0.0.0/8"},
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy skips invalid forwarded entries",
			remoteAddr: "10.0.0.5:54321",
			xff:        "garbage, 203.0.113.7",
			proxies:    []string{"10.0.0.0/8"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy falls back to X-Real-IP",
			remoteAddr: "10.0.0.5:54321",
			xRealIP:    "203.0.113.9",
			proxies:    []string{"10.0.0.0/8"},
			want:       "203.0.113.9",
		},
		{
			name:       "ipv6 trusted proxy",
			remoteAddr: "[::1]:54321",
			xff:        "2001:db8::1",
			proxies:    []string{"::1/128"},
			want:       "2001:db8::1",
		},
		{
			name:       "nil config defaults to remote addr",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4",
			nilConfig:  true,
			want:       "203.0.113.10",
		},
		{
			name:       "invalid cidr ranges are ignored",
			remoteAddr: "203.0.113.10:54321",
			xff:        "1.2.3.4",
			proxies:    []string{"invalid-cidr-range"},
			want:       "203.0.113.10",
		},
		{
			name:       "localhost claim from untrusted peer",
			remoteAddr: "203.0.113.10:54321",
			xff:        "127.0.0.1",
			proxies:    []string{"10.0.0.0/8"},
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			var config *pkghttp.IPConfig
			if !tt.nilConfig {
				config = &pkghttp.IPConfig{TrustedProxies: tt.proxies}
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, config))
		})
	}
}

func TestClientIP_Unknown(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = ""

	ip, ok := pkghttp.ClientIP(req, nil)
	assert.False(t, ok)
	assert.Empty(t, ip)
	assert.Equal(t, pkghttp.UnknownIP, pkghttp.ExtractClientIP(req, nil))
}

func TestClientIP_Known(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.4:1234"

	ip, ok := pkghttp.ClientIP(req, nil)
	assert.True(t, ok)
	assert.Equal(t, "198.51.100.4", ip)
}
