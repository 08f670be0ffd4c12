package handlers

import "github.com/createconomy/cemvp/internal/models"

// MFA DTOs

// VerifyMFARequest carries the PIN submitted from the verification page
type VerifyMFARequest struct {
	Pin string `json:"pin" validate:"required"`
}

// SetPasswordRequest records whether the identity provider accepted the new password
type SetPasswordRequest struct {
	PasswordSet bool `json:"passwordSet"`
}

// MessageResponse is the generic success body of the MFA endpoints
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Waitlist DTOs

// JoinWaitlistRequest is the waitlist signup body
type JoinWaitlistRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

// JoinWaitlistResponse reports the caller's position on the waitlist
type JoinWaitlistResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Position int    `json:"position"`
}

// WaitlistCountResponse is the public waitlist counter
type WaitlistCountResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Blog DTOs

// BlogListResponse wraps a page of published posts
type BlogListResponse struct {
	Posts []*models.BlogPost `json:"posts"`
	Count int                `json:"count"`
}
