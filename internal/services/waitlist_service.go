package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/createconomy/cemvp/internal/models"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

// WaitlistRepository defines the waitlist store operations
type WaitlistRepository interface {
	Create(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByIPSince(ctx context.Context, ipAddress string, since time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// WaitlistConfig bounds signups per client address
type WaitlistConfig struct {
	MaxPerIP int
	Window   time.Duration
}

// WaitlistService handles waitlist signups
type WaitlistService struct {
	repo     WaitlistRepository
	validate *validator.Validate
	config   WaitlistConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewWaitlistService creates a new WaitlistService
func NewWaitlistService(repo WaitlistRepository, config WaitlistConfig, logger *slog.Logger) *WaitlistService {
	if config.MaxPerIP <= 0 {
		config.MaxPerIP = 5
	}
	if config.Window <= 0 {
		config.Window = time.Hour
	}
	return &WaitlistService{
		repo:     repo,
		validate: validator.New(),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// RetryAfter is the wait suggested to a rate limited client
func (s *WaitlistService) RetryAfter() time.Duration {
	return s.config.Window
}

// Join adds email to the waitlist and returns the resulting total as the
// caller's position. ipAddress is nil when the client could not be identified,
// which skips the per-address limit.
func (s *WaitlistService) Join(ctx context.Context, email string, ipAddress *string) (int, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return 0, models.ErrBadRequest
	}

	if ipAddress != nil {
		since := s.now().Add(-s.config.Window)
		count, err := s.repo.CountByIPSince(ctx, *ipAddress, since)
		if err != nil {
			s.logger.Error("failed to count waitlist signups by ip", slog.Any("error", err))
			return 0, models.ErrInternalServer
		}
		if count >= s.config.MaxPerIP {
			s.logger.Warn("waitlist rate limit exceeded", slog.String("ip_address", *ipAddress))
			return 0, models.ErrRateLimited
		}
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check waitlist email", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	if exists {
		return 0, models.ErrConflict
	}

	if _, err := s.repo.Create(ctx, email, ipAddress); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return 0, models.ErrConflict
		}
		s.logger.Error("failed to create waitlist entry", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	position, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count waitlist", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	s.logger.Info("waitlist signup",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.Int("position", position),
	)

	return position, nil
}

// Count returns the number of waitlist signups
func (s *WaitlistService) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count waitlist", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	return count, nil
}
