package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/identity"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/internal/services"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds session claims to request context for testing authenticated endpoints
func WithSessionContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.SessionClaims{
		Email: email,
		Role:  models.SessionAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{models.SessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return req.WithContext(auth.WithUser(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is an error body with the given message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedError, resp.Error, "Error message mismatch")
	return resp
}

// MockIdentityProvider implements IdentityProvider for testing
type MockIdentityProvider struct {
	AuthorizeURLFunc           func(provider, redirectTo string) (*identity.Authorization, error)
	ExchangeCodeForSessionFunc func(ctx context.Context, code, verifier string) (*models.Session, error)
	SignOutFunc                func(ctx context.Context, accessToken string) error
}

func (m *MockIdentityProvider) AuthorizeURL(provider, redirectTo string) (*identity.Authorization, error) {
	if m.AuthorizeURLFunc == nil {
		return nil, models.ErrBadRequest
	}
	return m.AuthorizeURLFunc(provider, redirectTo)
}

func (m *MockIdentityProvider) ExchangeCodeForSession(ctx context.Context, code, verifier string) (*models.Session, error) {
	if m.ExchangeCodeForSessionFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.ExchangeCodeForSessionFunc(ctx, code, verifier)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc == nil {
		return nil
	}
	return m.SignOutFunc(ctx, accessToken)
}

// MockOnboardingService implements OnboardingServiceInterface for testing
type MockOnboardingService struct {
	OnExternalAuthCallbackFunc func(ctx context.Context, identity *models.Identity) (*services.CallbackResult, error)
	SummaryFunc                func(ctx context.Context, userID string) (*services.ProfileSummary, error)
}

func (m *MockOnboardingService) OnExternalAuthCallback(ctx context.Context, identity *models.Identity) (*services.CallbackResult, error) {
	if m.OnExternalAuthCallbackFunc == nil {
		return &services.CallbackResult{Profile: &models.Profile{UserID: identity.ID, Role: models.RoleUser}}, nil
	}
	return m.OnExternalAuthCallbackFunc(ctx, identity)
}

func (m *MockOnboardingService) Summary(ctx context.Context, userID string) (*services.ProfileSummary, error) {
	if m.SummaryFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SummaryFunc(ctx, userID)
}

// MockMFAService implements MFAServiceInterface for testing
type MockMFAService struct {
	CheckStatusFunc     func(ctx context.Context, userID string) (*models.MFAStatus, error)
	IssuePinFunc        func(ctx context.Context, userID string) error
	VerifyPinFunc       func(ctx context.Context, userID, pin string) error
	MarkPasswordSetFunc func(ctx context.Context, userID string, passwordSet bool) error
	NextPathFunc        func(ctx context.Context, userID string) string
}

func (m *MockMFAService) CheckStatus(ctx context.Context, userID string) (*models.MFAStatus, error) {
	if m.CheckStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CheckStatusFunc(ctx, userID)
}

func (m *MockMFAService) IssuePin(ctx context.Context, userID string) error {
	if m.IssuePinFunc == nil {
		return nil
	}
	return m.IssuePinFunc(ctx, userID)
}

func (m *MockMFAService) VerifyPin(ctx context.Context, userID, pin string) error {
	if m.VerifyPinFunc == nil {
		return models.ErrInvalidPin
	}
	return m.VerifyPinFunc(ctx, userID, pin)
}

func (m *MockMFAService) MarkPasswordSet(ctx context.Context, userID string, passwordSet bool) error {
	if m.MarkPasswordSetFunc == nil {
		return nil
	}
	return m.MarkPasswordSetFunc(ctx, userID, passwordSet)
}

func (m *MockMFAService) NextPath(ctx context.Context, userID string) string {
	if m.NextPathFunc == nil {
		return services.PathDashboard
	}
	return m.NextPathFunc(ctx, userID)
}

// MockWaitlistService implements WaitlistServiceInterface for testing
type MockWaitlistService struct {
	JoinFunc  func(ctx context.Context, email string, ipAddress *string) (int, error)
	CountFunc func(ctx context.Context) (int, error)
}

func (m *MockWaitlistService) Join(ctx context.Context, email string, ipAddress *string) (int, error) {
	if m.JoinFunc == nil {
		return 1, nil
	}
	return m.JoinFunc(ctx, email, ipAddress)
}

func (m *MockWaitlistService) Count(ctx context.Context) (int, error) {
	if m.CountFunc == nil {
		return 0, nil
	}
	return m.CountFunc(ctx)
}

func (m *MockWaitlistService) RetryAfter() time.Duration {
	return time.Hour
}

// MockBlogService implements BlogServiceInterface for testing
type MockBlogService struct {
	ListFunc func(ctx context.Context, category string) ([]*models.BlogPost, error)
	GetFunc  func(ctx context.Context, slug string) (*models.BlogPost, error)
}

func (m *MockBlogService) List(ctx context.Context, category string) ([]*models.BlogPost, error) {
	if m.ListFunc == nil {
		return []*models.BlogPost{}, nil
	}
	return m.ListFunc(ctx, category)
}

func (m *MockBlogService) Get(ctx context.Context, slug string) (*models.BlogPost, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, slug)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
