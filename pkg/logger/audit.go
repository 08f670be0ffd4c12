package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventOAuthLogin          = "oauth_login"
	EventProfileCreated      = "profile_created"
	EventAdminProvisioned    = "admin_provisioned"
	EventNotificationFailure = "notification_failed"
	EventMFAPinIssued        = "mfa_pin_issued"
	EventMFAPinVerified      = "mfa_pin_verified"
	EventPasswordSetup       = "password_setup"
	EventSignOut             = "sign_out"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	UserID        string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// Log records an audit event. Client address and user agent come from ctx when present.
// Failures are logged at warn level.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if meta, ok := RequestMetaFromContext(ctx); ok {
		if meta.IPAddress != "" {
			attrs = append(attrs, slog.String("ip_address", meta.IPAddress))
		}
		if meta.UserAgent != "" {
			attrs = append(attrs, slog.String("user_agent", meta.UserAgent))
		}
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// RequestMeta describes the client behind a request
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta returns a copy of ctx carrying client details for audit logging
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the client details stored by WithRequestMeta
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
