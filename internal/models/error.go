package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrRateLimited    = errors.New("rate limit exceeded")

	// MFA state errors
	ErrMFANotEnabled           = errors.New("mfa not enabled")
	ErrPinExpired              = errors.New("mfa pin expired")
	ErrInvalidPin              = errors.New("invalid mfa pin")
	ErrNotificationUnavailable = errors.New("notification channel not configured")
)
