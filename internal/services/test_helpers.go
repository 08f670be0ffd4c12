package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/createconomy/cemvp/internal/models"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

// MockProfileRepository implements ProfileRepository for testing
type MockProfileRepository struct {
	GetByUserIDFunc        func(ctx context.Context, userID string) (*models.Profile, error)
	CreateFunc             func(ctx context.Context, p *models.Profile) (*models.Profile, error)
	ApplyPatchFunc         func(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	UpsertOAuthAccountFunc func(ctx context.Context, acct *models.OAuthAccount) error
	ListOAuthAccountsFunc  func(ctx context.Context, profileID string) ([]*models.OAuthAccount, error)
	CreateSellerInfoFunc   func(ctx context.Context, profileID string) error
	CreateAdminInfoFunc    func(ctx context.Context, profileID string, permissions []string) error
	GetAdminInfoFunc       func(ctx context.Context, profileID string) (*models.AdminInfo, error)
	EnableMFAFunc          func(ctx context.Context, userID, pin string, expiresAt time.Time) error
	SetMFAPinFunc          func(ctx context.Context, userID, pin string, expiresAt time.Time) error
	MarkMFAVerifiedFunc    func(ctx context.Context, userID string) error
	SetPasswordSetFunc     func(ctx context.Context, userID string, passwordSet bool) error
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	created := *p
	created.ID = "profile_123"
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return &created, nil
}

func (m *MockProfileRepository) ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if m.ApplyPatchFunc != nil {
		return m.ApplyPatchFunc(ctx, userID, patch)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProfileRepository) UpsertOAuthAccount(ctx context.Context, acct *models.OAuthAccount) error {
	if m.UpsertOAuthAccountFunc != nil {
		return m.UpsertOAuthAccountFunc(ctx, acct)
	}
	return nil
}

func (m *MockProfileRepository) ListOAuthAccounts(ctx context.Context, profileID string) ([]*models.OAuthAccount, error) {
	if m.ListOAuthAccountsFunc != nil {
		return m.ListOAuthAccountsFunc(ctx, profileID)
	}
	return []*models.OAuthAccount{}, nil
}

func (m *MockProfileRepository) CreateSellerInfo(ctx context.Context, profileID string) error {
	if m.CreateSellerInfoFunc != nil {
		return m.CreateSellerInfoFunc(ctx, profileID)
	}
	return nil
}

func (m *MockProfileRepository) CreateAdminInfo(ctx context.Context, profileID string, permissions []string) error {
	if m.CreateAdminInfoFunc != nil {
		return m.CreateAdminInfoFunc(ctx, profileID, permissions)
	}
	return nil
}

func (m *MockProfileRepository) GetAdminInfo(ctx context.Context, profileID string) (*models.AdminInfo, error) {
	if m.GetAdminInfoFunc != nil {
		return m.GetAdminInfoFunc(ctx, profileID)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileRepository) EnableMFA(ctx context.Context, userID, pin string, expiresAt time.Time) error {
	if m.EnableMFAFunc != nil {
		return m.EnableMFAFunc(ctx, userID, pin, expiresAt)
	}
	return nil
}

func (m *MockProfileRepository) SetMFAPin(ctx context.Context, userID, pin string, expiresAt time.Time) error {
	if m.SetMFAPinFunc != nil {
		return m.SetMFAPinFunc(ctx, userID, pin, expiresAt)
	}
	return nil
}

func (m *MockProfileRepository) MarkMFAVerified(ctx context.Context, userID string) error {
	if m.MarkMFAVerifiedFunc != nil {
		return m.MarkMFAVerifiedFunc(ctx, userID)
	}
	return nil
}

func (m *MockProfileRepository) SetPasswordSet(ctx context.Context, userID string, passwordSet bool) error {
	if m.SetPasswordSetFunc != nil {
		return m.SetPasswordSetFunc(ctx, userID, passwordSet)
	}
	return nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	Configured              bool
	SendAdminSetupEmailFunc func(ctx context.Context, to string, msg AdminSetupMessage) error
	SendMFAPinEmailFunc     func(ctx context.Context, to, pin string, expiresAt time.Time) error
}

func (m *MockNotifier) IsConfigured() bool {
	return m.Configured
}

func (m *MockNotifier) SendAdminSetupEmail(ctx context.Context, to string, msg AdminSetupMessage) error {
	if m.SendAdminSetupEmailFunc != nil {
		return m.SendAdminSetupEmailFunc(ctx, to, msg)
	}
	return nil
}

func (m *MockNotifier) SendMFAPinEmail(ctx context.Context, to, pin string, expiresAt time.Time) error {
	if m.SendMFAPinEmailFunc != nil {
		return m.SendMFAPinEmailFunc(ctx, to, pin, expiresAt)
	}
	return nil
}

// MockWaitlistRepository implements WaitlistRepository for testing
type MockWaitlistRepository struct {
	CreateFunc         func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error)
	ExistsByEmailFunc  func(ctx context.Context, email string) (bool, error)
	CountByIPSinceFunc func(ctx context.Context, ipAddress string, since time.Time) (int, error)
	CountFunc          func(ctx context.Context) (int, error)
}

func (m *MockWaitlistRepository) Create(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, ipAddress)
	}
	return &models.WaitlistEntry{ID: "entry_123", Email: email, IPAddress: ipAddress, CreatedAt: time.Now()}, nil
}

func (m *MockWaitlistRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockWaitlistRepository) CountByIPSince(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	if m.CountByIPSinceFunc != nil {
		return m.CountByIPSinceFunc(ctx, ipAddress, since)
	}
	return 0, nil
}

func (m *MockWaitlistRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockBlogRepository implements BlogRepository for testing
type MockBlogRepository struct {
	ListFunc      func(ctx context.Context, category string, limit int) ([]*models.BlogPost, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*models.BlogPost, error)
	UpsertAllFunc func(ctx context.Context, posts []*models.BlogPost) error
}

func (m *MockBlogRepository) List(ctx context.Context, category string, limit int) ([]*models.BlogPost, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, category, limit)
	}
	return []*models.BlogPost{}, nil
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogRepository) UpsertAll(ctx context.Context, posts []*models.BlogPost) error {
	if m.UpsertAllFunc != nil {
		return m.UpsertAllFunc(ctx, posts)
	}
	return nil
}

// NewTestProfile creates a test profile for the given user
func NewTestProfile(userID, email string, role models.Role) *models.Profile {
	now := time.Now()
	return &models.Profile{
		ID:          "profile_" + userID,
		UserID:      userID,
		Email:       email,
		Role:        role,
		PasswordSet: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestAdminProfile creates an admin profile with MFA enabled and a live PIN
func NewTestAdminProfile(userID, email, pin string, expiresAt time.Time) *models.Profile {
	p := NewTestProfile(userID, email, models.RoleAdmin)
	p.MFAEnabled = true
	p.MFAPin = &pin
	p.MFAPinExpires = &expiresAt
	p.PasswordSet = false
	return p
}

// NewTestIdentity creates an identity from an OAuth provider
func NewTestIdentity(id, email, provider string) *models.Identity {
	return &models.Identity{
		ID:    id,
		Email: email,
		AppMetadata: map[string]any{
			"provider":    provider,
			"provider_id": "ext_" + id,
		},
		UserMetadata: map[string]any{
			"full_name":   "Test User",
			"user_name":   "testuser",
			"avatar_url":  "https://example.com/avatar.png",
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(discardLogger())
}
