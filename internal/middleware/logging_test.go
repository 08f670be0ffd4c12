package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/createconomy/cemvp/pkg/http"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

func TestSecureLogger_RedactsOAuthCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var meta pkglogger.RequestMeta
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta, _ = pkglogger.RequestMetaFromContext(r.Context())
		w.WriteHeader(http.StatusFound)
	})
	handler := SecureLogger(logger, &pkghttp.IPConfig{})(next)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=secret-code&next=/dashboard", nil)
	req.RemoteAddr = "203.0.113.4:5555"
	req.Header.Set("User-Agent", "test-agent")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.4", meta.IPAddress)
	assert.Equal(t, "test-agent", meta.UserAgent)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/auth/callback?[REDACTED]", entry["path"])
	assert.Equal(t, float64(http.StatusFound), entry["status"])
	assert.NotContains(t, buf.String(), "secret-code")
}

func TestSecureLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := SecureLogger(logger, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blog?category=news", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "/api/blog?category=news", entry["path"])
}
