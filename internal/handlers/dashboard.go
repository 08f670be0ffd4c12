package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// DashboardHandler serves data for sessions that have cleared onboarding
type DashboardHandler struct {
	onboarding OnboardingServiceInterface
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(onboarding OnboardingServiceInterface) *DashboardHandler {
	return &DashboardHandler{onboarding: onboarding}
}

// Get handles GET /api/dashboard
//
// @Summary Profile of the signed-in user
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.ProfileSummary
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 403 {object} auth.GateResponse
// @Router /api/dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	summary, err := h.onboarding.Summary(r.Context(), user.UserID())
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
	json.NewEncoder(w).Encode(summary)
}
