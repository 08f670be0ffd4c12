package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/models"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

// Redirect targets for each onboarding gate
const (
	PathVerifyMFA     = "/auth/verify-mfa"
	PathSetupPassword = "/auth/setup-password"
	PathDashboard     = "/dashboard"
)

// MFAService handles the PIN lifecycle and the onboarding gate of a session
type MFAService struct {
	repo        ProfileRepository
	pins        *auth.PinGenerator
	notifier    Notifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewMFAService creates a new MFA service
func NewMFAService(
	repo ProfileRepository,
	pins *auth.PinGenerator,
	notifier Notifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *MFAService {
	return &MFAService{
		repo:        repo,
		pins:        pins,
		notifier:    notifier,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CheckStatus derives the onboarding status of a user from the stored profile
func (s *MFAService) CheckStatus(ctx context.Context, userID string) (*models.MFAStatus, error) {
	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.MFAStatus{
		MFAEnabled:         profile.MFAEnabled,
		MFAVerified:        profile.MFAVerified,
		RequiresMFA:        profile.MFAEnabled && !profile.MFAVerified,
		PinExpired:         s.pins.IsExpired(profile.MFAPinExpires),
		NeedsPasswordSetup: !profile.PasswordSet && profile.Role == models.RoleAdmin,
		Role:               profile.Role,
	}, nil
}

// IssuePin stores a fresh PIN for the user and emails it. The notification
// channel is checked before anything is written.
func (s *MFAService) IssuePin(ctx context.Context, userID string) error {
	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !profile.MFAEnabled {
		return models.ErrMFANotEnabled
	}

	if !s.notifier.IsConfigured() {
		return models.ErrNotificationUnavailable
	}

	pin, err := s.pins.Generate()
	if err != nil {
		s.logger.Error("failed to generate mfa pin", slog.Any("error", err))
		return models.ErrInternalServer
	}
	expiresAt := s.pins.Expiration()

	if err := s.repo.SetMFAPin(ctx, userID, pin, expiresAt); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to store mfa pin", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.notifier.SendMFAPinEmail(ctx, profile.Email, pin, expiresAt); err != nil {
		s.logger.Error("failed to send mfa pin email", slog.String("user_id", userID), slog.Any("error", err))
		s.auditLogger.Log(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventMFAPinIssued,
			UserID:        userID,
			Success:       false,
			FailureReason: "send_failed",
		})
		return models.ErrInternalServer
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventMFAPinIssued,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

// VerifyPin checks a submitted PIN and marks the user verified on a match
func (s *MFAService) VerifyPin(ctx context.Context, userID, pin string) error {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrMFANotEnabled
		}
		s.logger.Error("failed to get profile", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !profile.MFAEnabled {
		return models.ErrMFANotEnabled
	}

	if profile.MFAPin == nil || s.pins.IsExpired(profile.MFAPinExpires) {
		s.recordVerification(ctx, userID, "pin_expired")
		return models.ErrPinExpired
	}

	if !auth.PinsEqual(*profile.MFAPin, pin) {
		s.recordVerification(ctx, userID, "invalid_pin")
		return models.ErrInvalidPin
	}

	if err := s.repo.MarkMFAVerified(ctx, userID); err != nil {
		s.logger.Error("failed to mark mfa verified", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.recordVerification(ctx, userID, "")
	return nil
}

// MarkPasswordSet records the outcome of password setup
func (s *MFAService) MarkPasswordSet(ctx context.Context, userID string, passwordSet bool) error {
	if err := s.repo.SetPasswordSet(ctx, userID, passwordSet); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update password flag", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventPasswordSetup,
		UserID:    userID,
		Success:   passwordSet,
	})
	return nil
}

// NextPath returns where a signed-in user should be sent next. Errors fall
// through to the dashboard.
func (s *MFAService) NextPath(ctx context.Context, userID string) string {
	status, err := s.CheckStatus(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to check onboarding status for redirect",
			slog.String("user_id", userID), slog.Any("error", err))
		return PathDashboard
	}

	switch status.Gate() {
	case models.GateNeedsMFA:
		return PathVerifyMFA
	case models.GateNeedsPassword:
		return PathSetupPassword
	default:
		return PathDashboard
	}
}

func (s *MFAService) getProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return profile, nil
}

func (s *MFAService) recordVerification(ctx context.Context, userID, failureReason string) {
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType:     pkglogger.EventMFAPinVerified,
		UserID:        userID,
		Success:       failureReason == "",
		FailureReason: failureReason,
	})
}
