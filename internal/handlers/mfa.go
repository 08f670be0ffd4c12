package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// MFAServiceInterface defines the PIN and onboarding gate operations
type MFAServiceInterface interface {
	CheckStatus(ctx context.Context, userID string) (*models.MFAStatus, error)
	IssuePin(ctx context.Context, userID string) error
	VerifyPin(ctx context.Context, userID, pin string) error
	MarkPasswordSet(ctx context.Context, userID string, passwordSet bool) error
	NextPath(ctx context.Context, userID string) string
}

// MFAHandler handles MFA-related HTTP requests
type MFAHandler struct {
	service MFAServiceInterface
	logger  *slog.Logger
}

// NewMFAHandler creates a new MFA handler
func NewMFAHandler(service MFAServiceInterface, logger *slog.Logger) *MFAHandler {
	return &MFAHandler{
		service: service,
		logger:  logger,
	}
}

// CheckMFA handles GET /api/auth/check-mfa
//
// @Summary Onboarding status of the current session
// @Tags mfa
// @Produce json
// @Success 200 {object} models.MFAStatus
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/check-mfa [get]
func (h *MFAHandler) CheckMFA(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	status, err := h.service.CheckStatus(r.Context(), user.UserID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Profile not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// SendPin handles POST /api/auth/send-mfa-pin
//
// @Summary Email a fresh MFA PIN
// @Tags mfa
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/send-mfa-pin [post]
func (h *MFAHandler) SendPin(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	err := h.service.IssuePin(r.Context(), user.UserID())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Profile not found")
		case errors.Is(err, models.ErrMFANotEnabled):
			pkghttp.WriteError(w, http.StatusBadRequest, "mfa_not_enabled", "MFA not enabled for this account")
		case errors.Is(err, models.ErrNotificationUnavailable):
			pkghttp.WriteError(w, http.StatusInternalServerError, "email_not_configured", "Email service not configured")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeMessage(w, "MFA PIN sent to your email")
}

// VerifyPin handles POST /api/auth/verify-mfa
//
// @Summary Verify the emailed MFA PIN
// @Tags mfa
// @Accept json
// @Produce json
// @Param request body VerifyMFARequest true "PIN"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/verify-mfa [post]
func (h *MFAHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req VerifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "MFA PIN is required")
		return
	}

	err := h.service.VerifyPin(r.Context(), user.UserID(), req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMFANotEnabled):
			pkghttp.WriteError(w, http.StatusBadRequest, "mfa_not_enabled", "MFA not enabled")
		case errors.Is(err, models.ErrPinExpired):
			pkghttp.WriteError(w, http.StatusBadRequest, "pin_expired", "MFA PIN has expired. Please request a new one.")
		case errors.Is(err, models.ErrInvalidPin):
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_pin", "Invalid MFA PIN")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeMessage(w, "MFA verified successfully")
}

// SetPassword handles POST /api/auth/set-password
//
// @Summary Record that the admin password has been set
// @Tags mfa
// @Accept json
// @Produce json
// @Param request body SetPasswordRequest true "Password status"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/set-password [post]
func (h *MFAHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.MarkPasswordSet(r.Context(), user.UserID(), req.PasswordSet); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Profile not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeMessage(w, "Password status updated")
}

func writeMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(MessageResponse{Success: true, Message: message})
}
