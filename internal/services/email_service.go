package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"golang.org/x/time/rate"

	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/pkg/logger"
)

// Notifier delivers onboarding and MFA emails
type Notifier interface {
	IsConfigured() bool
	SendAdminSetupEmail(ctx context.Context, to string, msg AdminSetupMessage) error
	SendMFAPinEmail(ctx context.Context, to, pin string, expiresAt time.Time) error
}

// AdminSetupMessage is the content of the first-time admin setup email
type AdminSetupMessage struct {
	Name      string
	SetupURL  string
	Pin       string
	ExpiresAt time.Time
}

// sesAPI is the subset of the SES client used for sending
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends emails using AWS SES, paced to the account's send rate
type SESNotifier struct {
	client      sesAPI
	fromAddress string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewSESNotifier creates a new SES notifier. An empty region yields a notifier
// that reports itself as not configured.
func NewSESNotifier(ctx context.Context, region, fromAddress string, sendRate float64, logger *slog.Logger) (*SESNotifier, error) {
	if region == "" || fromAddress == "" {
		return &SESNotifier{fromAddress: fromAddress, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESNotifier(ses.NewFromConfig(cfg), fromAddress, sendRate, logger), nil
}

func newSESNotifier(client sesAPI, fromAddress string, sendRate float64, logger *slog.Logger) *SESNotifier {
	if sendRate <= 0 {
		sendRate = 1
	}
	return &SESNotifier{
		client:      client,
		fromAddress: fromAddress,
		limiter:     rate.NewLimiter(rate.Limit(sendRate), 1),
		logger:      logger,
	}
}

// IsConfigured reports whether emails can be delivered
func (s *SESNotifier) IsConfigured() bool {
	return s.client != nil
}

// SendAdminSetupEmail sends the password setup link and first MFA PIN to a new admin
func (s *SESNotifier) SendAdminSetupEmail(ctx context.Context, to string, msg AdminSetupMessage) error {
	content := renderAdminSetupEmail(msg)
	return s.send(ctx, to, content)
}

// SendMFAPinEmail sends a freshly issued MFA PIN
func (s *SESNotifier) SendMFAPinEmail(ctx context.Context, to, pin string, expiresAt time.Time) error {
	content := renderMFAPinEmail(pin, expiresAt)
	return s.send(ctx, to, content)
}

func (s *SESNotifier) send(ctx context.Context, to string, content emailContent) error {
	if !s.IsConfigured() {
		return models.ErrNotificationUnavailable
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email send rate wait: %w", err)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(content.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(content.HTML),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(content.Text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", logger.SanitizedEmail(to)),
			slog.String("subject", content.Subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", logger.SanitizedEmail(to)),
		slog.String("subject", content.Subject),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
