package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

const genericWaitlistError = "An error occurred. Please try again later."

// WaitlistServiceInterface defines the waitlist operations
type WaitlistServiceInterface interface {
	Join(ctx context.Context, email string, ipAddress *string) (int, error)
	Count(ctx context.Context) (int, error)
	RetryAfter() time.Duration
}

// WaitlistHandler handles waitlist signups and the public counter
type WaitlistHandler struct {
	service  WaitlistServiceInterface
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewWaitlistHandler creates a new WaitlistHandler
func NewWaitlistHandler(service WaitlistServiceInterface, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		service:  service,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// Join handles POST /api/waitlist
//
// @Summary Join the waitlist
// @Tags waitlist
// @Accept json
// @Produce json
// @Param request body JoinWaitlistRequest true "Email"
// @Success 201 {object} JoinWaitlistResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/waitlist [post]
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteFieldError(w, "email", "Invalid email address")
		return
	}

	var ipAddress *string
	if ip, ok := pkghttp.ClientIP(r, h.ipConfig); ok {
		ipAddress = &ip
	}

	position, err := h.service.Join(r.Context(), req.Email, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteFieldError(w, "email", "Invalid email address")
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded. Please try again later.", int(h.service.RetryAfter().Seconds()))
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Email already registered")
		default:
			pkghttp.WriteInternalError(w, genericWaitlistError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(JoinWaitlistResponse{
		Success:  true,
		Message:  "Successfully joined the waitlist!",
		Position: position,
	})
}

// Count handles GET /api/waitlist/count
//
// @Summary Number of waitlist signups
// @Tags waitlist
// @Produce json
// @Success 200 {object} WaitlistCountResponse
// @Failure 500 {object} WaitlistCountResponse
// @Router /api/waitlist/count [get]
func (h *WaitlistHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(WaitlistCountResponse{Count: 0, Error: "Failed to fetch count"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(WaitlistCountResponse{Count: count})
}
