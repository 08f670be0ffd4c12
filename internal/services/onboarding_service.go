package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/models"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

// ProfileRepository defines the profile store operations used by the services
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	UpsertOAuthAccount(ctx context.Context, acct *models.OAuthAccount) error
	ListOAuthAccounts(ctx context.Context, profileID string) ([]*models.OAuthAccount, error)
	CreateSellerInfo(ctx context.Context, profileID string) error
	CreateAdminInfo(ctx context.Context, profileID string, permissions []string) error
	GetAdminInfo(ctx context.Context, profileID string) (*models.AdminInfo, error)
	EnableMFA(ctx context.Context, userID, pin string, expiresAt time.Time) error
	SetMFAPin(ctx context.Context, userID, pin string, expiresAt time.Time) error
	MarkMFAVerified(ctx context.Context, userID string) error
	SetPasswordSet(ctx context.Context, userID string, passwordSet bool) error
}

// OnboardingService provisions and refreshes profiles after an identity provider login
type OnboardingService struct {
	repo        ProfileRepository
	classifier  *auth.RoleClassifier
	pins        *auth.PinGenerator
	notifier    Notifier
	siteURL     string
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(
	repo ProfileRepository,
	classifier *auth.RoleClassifier,
	pins *auth.PinGenerator,
	notifier Notifier,
	siteURL string,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *OnboardingService {
	return &OnboardingService{
		repo:        repo,
		classifier:  classifier,
		pins:        pins,
		notifier:    notifier,
		siteURL:     siteURL,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CallbackResult describes what a login did to the caller's profile
type CallbackResult struct {
	Profile          *models.Profile
	Created          bool
	NotificationSent bool
}

// ProfileSummary is the cleared-session view of a profile
type ProfileSummary struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Username    *string     `json:"username,omitempty"`
	FullName    *string     `json:"fullName,omitempty"`
	AvatarURL   *string     `json:"avatarUrl,omitempty"`
	Role        models.Role `json:"role"`
	Permissions []string    `json:"permissions,omitempty"`
	Providers   []string    `json:"providers,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OnExternalAuthCallback creates the profile on first login and merges provider
// details into it on every later one
func (s *OnboardingService) OnExternalAuthCallback(ctx context.Context, identity *models.Identity) (*CallbackResult, error) {
	if identity == nil || identity.ID == "" {
		return nil, models.ErrBadRequest
	}

	profile, err := s.repo.GetByUserID(ctx, identity.ID)
	if err == nil {
		return s.syncExisting(ctx, profile, identity)
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up profile", slog.String("user_id", identity.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result, err := s.provisionNew(ctx, identity)
	if errors.Is(err, models.ErrConflict) {
		// A concurrent login created the profile first
		profile, err = s.repo.GetByUserID(ctx, identity.ID)
		if err != nil {
			s.logger.Error("failed to re-fetch profile after creation race",
				slog.String("user_id", identity.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		return s.syncExisting(ctx, profile, identity)
	}
	return result, err
}

func (s *OnboardingService) syncExisting(ctx context.Context, profile *models.Profile, identity *models.Identity) (*CallbackResult, error) {
	patch := identity.ProfilePatch()
	if !patch.IsEmpty() {
		updated, err := s.repo.ApplyPatch(ctx, identity.ID, patch)
		if err != nil {
			s.logger.Error("failed to update profile", slog.String("user_id", identity.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		profile = updated
	}

	if err := s.linkProvider(ctx, profile.ID, identity); err != nil {
		return nil, err
	}

	result := &CallbackResult{Profile: profile}

	// An earlier login failed between creating the profile and enabling MFA
	if profile.Role == models.RoleAdmin && !profile.MFAEnabled {
		s.logger.Warn("admin profile without mfa, resuming provisioning", slog.String("user_id", identity.ID))
		if err := s.provisionAdmin(ctx, result, identity); err != nil {
			return nil, err
		}
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventOAuthLogin,
		UserID:    identity.ID,
		Success:   true,
		Metadata:  map[string]string{"provider": identity.Provider()},
	})

	return result, nil
}

func (s *OnboardingService) provisionNew(ctx context.Context, identity *models.Identity) (*CallbackResult, error) {
	role := s.classifier.Classify(identity.Email)
	patch := identity.ProfilePatch()

	profile, err := s.repo.Create(ctx, &models.Profile{
		UserID:    identity.ID,
		Email:     identity.Email,
		Username:  patch.Username,
		FullName:  patch.FullName,
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		AvatarURL: patch.AvatarURL,
		Phone:     patch.Phone,
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create profile", slog.String("user_id", identity.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile created",
		slog.String("user_id", identity.ID),
		slog.String("email", pkglogger.SanitizedEmail(identity.Email)),
		slog.String("role", string(role)),
	)
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventProfileCreated,
		UserID:    identity.ID,
		Success:   true,
		Metadata:  map[string]string{"role": string(role), "provider": identity.Provider()},
	})

	if err := s.linkProvider(ctx, profile.ID, identity); err != nil {
		return nil, err
	}

	result := &CallbackResult{Profile: profile, Created: true}

	switch role {
	case models.RoleSeller:
		if err := s.repo.CreateSellerInfo(ctx, profile.ID); err != nil {
			s.logger.Error("failed to create seller info", slog.String("user_id", identity.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	case models.RoleAdmin:
		if err := s.provisionAdmin(ctx, result, identity); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// provisionAdmin grants default permissions, turns on MFA with a first PIN and
// sends the setup email. A failed email only clears result.NotificationSent.
// An admin_info row left by an earlier attempt is kept.
func (s *OnboardingService) provisionAdmin(ctx context.Context, result *CallbackResult, identity *models.Identity) error {
	profile := result.Profile

	err := s.repo.CreateAdminInfo(ctx, profile.ID, models.DefaultAdminPermissions)
	if err != nil && !errors.Is(err, models.ErrConflict) {
		s.logger.Error("failed to create admin info", slog.String("user_id", identity.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	pin, err := s.pins.Generate()
	if err != nil {
		s.logger.Error("failed to generate mfa pin", slog.Any("error", err))
		return models.ErrInternalServer
	}
	expiresAt := s.pins.Expiration()

	if err := s.repo.EnableMFA(ctx, identity.ID, pin, expiresAt); err != nil {
		s.logger.Error("failed to enable mfa", slog.String("user_id", identity.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	profile.MFAEnabled = true
	profile.MFAVerified = false
	profile.MFAPin = &pin
	profile.MFAPinExpires = &expiresAt
	profile.PasswordSet = false

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventAdminProvisioned,
		UserID:    identity.ID,
		Success:   true,
	})

	result.NotificationSent = s.sendAdminSetup(ctx, identity, pin, expiresAt)
	return nil
}

func (s *OnboardingService) sendAdminSetup(ctx context.Context, identity *models.Identity, pin string, expiresAt time.Time) bool {
	reason := ""
	if !s.notifier.IsConfigured() {
		reason = "notification_unavailable"
	} else {
		msg := AdminSetupMessage{
			Name:      identity.FullName(),
			SetupURL:  s.SetupURL(identity.ID),
			Pin:       pin,
			ExpiresAt: expiresAt,
		}
		if err := s.notifier.SendAdminSetupEmail(ctx, identity.Email, msg); err != nil {
			s.logger.Warn("failed to send admin setup email",
				slog.String("user_id", identity.ID),
				slog.Any("error", err))
			reason = "send_failed"
		}
	}

	if reason == "" {
		return true
	}

	if reason == "notification_unavailable" {
		s.logger.Warn("email not configured, admin setup pin generated but not sent",
			slog.String("user_id", identity.ID))
	}
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType:     pkglogger.EventNotificationFailure,
		UserID:        identity.ID,
		Success:       false,
		FailureReason: reason,
		Metadata:      map[string]string{"notification": "admin_setup"},
	})
	return false
}

// linkProvider records the external account behind a non-email login
func (s *OnboardingService) linkProvider(ctx context.Context, profileID string, identity *models.Identity) error {
	provider := identity.Provider()
	if provider == models.ProviderEmail {
		return nil
	}

	patch := identity.ProfilePatch()
	acct := &models.OAuthAccount{
		ProfileID:        profileID,
		Provider:         models.OAuthProviderFromName(provider),
		ProviderID:       identity.ProviderUserID(),
		ProviderEmail:    patch.Email,
		ProviderUsername: patch.Username,
		ProviderData:     identity.UserMetadata,
	}

	if err := s.repo.UpsertOAuthAccount(ctx, acct); err != nil {
		s.logger.Error("failed to link oauth account",
			slog.String("profile_id", profileID),
			slog.String("provider", provider),
			slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// SetupURL is the password setup link sent to a newly provisioned admin
func (s *OnboardingService) SetupURL(userID string) string {
	return fmt.Sprintf("%s/auth/setup-password?token=%s", s.siteURL, url.QueryEscape(userID))
}

// Summary returns the profile of a user, including admin permissions and linked providers
func (s *OnboardingService) Summary(ctx context.Context, userID string) (*ProfileSummary, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	summary := &ProfileSummary{
		ID:        profile.ID,
		Email:     profile.Email,
		Username:  profile.Username,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
	}

	if profile.Role == models.RoleAdmin {
		info, err := s.repo.GetAdminInfo(ctx, profile.ID)
		switch {
		case err == nil:
			summary.Permissions = info.Permissions
		case !errors.Is(err, models.ErrNotFound):
			s.logger.Error("failed to get admin info", slog.String("user_id", userID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	accounts, err := s.repo.ListOAuthAccounts(ctx, profile.ID)
	if err != nil {
		s.logger.Error("failed to list oauth accounts", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	for _, acct := range accounts {
		summary.Providers = append(summary.Providers, string(acct.Provider))
	}

	return summary, nil
}
