package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createconomy/cemvp/internal/handlers"
	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

func newTestWaitlistHandler(svc handlers.WaitlistServiceInterface) *handlers.WaitlistHandler {
	return handlers.NewWaitlistHandler(svc, &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}, testLogger())
}

func TestJoinWaitlist_Success(t *testing.T) {
	var gotIP *string
	svc := &handlers.MockWaitlistService{
		JoinFunc: func(ctx context.Context, email string, ipAddress *string) (int, error) {
			gotIP = ipAddress
			return 42, nil
		},
	}
	handler := newTestWaitlistHandler(svc)

	req := handlers.NewTestRequest(t, http.MethodPost, "/api/waitlist", handlers.JoinWaitlistRequest{Email: "fan@example.com"})
	req.RemoteAddr = "10.0.0.2:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	w := httptest.NewRecorder()
	handler.Join(w, req)

	var resp handlers.JoinWaitlistResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Successfully joined the waitlist!", resp.Message)
	assert.Equal(t, 42, resp.Position)
	require.NotNil(t, gotIP)
	assert.Equal(t, "203.0.113.9", *gotIP)
}

func TestJoinWaitlist_TrimsEmailBeforeValidation(t *testing.T) {
	var gotEmail string
	svc := &handlers.MockWaitlistService{
		JoinFunc: func(ctx context.Context, email string, ipAddress *string) (int, error) {
			gotEmail = email
			return 7, nil
		},
	}
	handler := newTestWaitlistHandler(svc)

	w := httptest.NewRecorder()
	handler.Join(w, httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(`{"email":"  fan@example.com \t"}`)))

	var resp handlers.JoinWaitlistResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, 7, resp.Position)
	assert.Equal(t, "fan@example.com", gotEmail)
}

func TestJoinWaitlist_UnknownClientAddress(t *testing.T) {
	gotIP := new(string)
	svc := &handlers.MockWaitlistService{
		JoinFunc: func(ctx context.Context, email string, ipAddress *string) (int, error) {
			gotIP = ipAddress
			return 1, nil
		},
	}
	handler := newTestWaitlistHandler(svc)

	req := handlers.NewTestRequest(t, http.MethodPost, "/api/waitlist", handlers.JoinWaitlistRequest{Email: "fan@example.com"})
	req.RemoteAddr = ""
	w := httptest.NewRecorder()
	handler.Join(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, gotIP)
}

func TestJoinWaitlist_InvalidEmail(t *testing.T) {
	svc := &handlers.MockWaitlistService{
		JoinFunc: func(ctx context.Context, email string, ipAddress *string) (int, error) {
			t.Fatal("invalid email must not reach the service")
			return 0, nil
		},
	}
	handler := newTestWaitlistHandler(svc)

	for _, body := range []string{`{"email":"nope"}`, `{}`, `{"email":"   "}`} {
		w := httptest.NewRecorder()
		handler.Join(w, httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(body)))

		resp := handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid email address")
		assert.Equal(t, "email", resp.Field)
	}
}

func TestJoinWaitlist_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"rate limited", models.ErrRateLimited, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"duplicate", models.ErrConflict, http.StatusConflict, "Email already registered"},
		{"store failure", models.ErrInternalServer, http.StatusInternalServerError, "An error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockWaitlistService{
				JoinFunc: func(ctx context.Context, email string, ipAddress *string) (int, error) {
					return 0, tt.err
				},
			}
			handler := newTestWaitlistHandler(svc)

			req := handlers.NewTestRequest(t, http.MethodPost, "/api/waitlist", handlers.JoinWaitlistRequest{Email: "fan@example.com"})
			w := httptest.NewRecorder()
			handler.Join(w, req)

			resp := handlers.AssertErrorResponse(t, w, tt.status, tt.message)
			if tt.err == models.ErrRateLimited {
				assert.Equal(t, 3600, resp.RetryAfter)
				assert.Equal(t, "3600", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestWaitlistCount(t *testing.T) {
	svc := &handlers.MockWaitlistService{
		CountFunc: func(ctx context.Context) (int, error) {
			return 128, nil
		},
	}
	handler := newTestWaitlistHandler(svc)

	w := httptest.NewRecorder()
	handler.Count(w, httptest.NewRequest(http.MethodGet, "/api/waitlist/count", nil))

	var resp handlers.WaitlistCountResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 128, resp.Count)
	assert.Empty(t, resp.Error)
}

func TestWaitlistCount_Error(t *testing.T) {
	svc := &handlers.MockWaitlistService{
		CountFunc: func(ctx context.Context) (int, error) {
			return 0, models.ErrInternalServer
		},
	}
	handler := newTestWaitlistHandler(svc)

	w := httptest.NewRecorder()
	handler.Count(w, httptest.NewRequest(http.MethodGet, "/api/waitlist/count", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"count":0,"error":"Failed to fetch count"}`, w.Body.String())
}
