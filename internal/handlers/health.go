package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	db      HealthChecker
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Health handles GET /health
//
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.db.HealthCheck(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthResponse{Status: "unhealthy", Database: "down"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Database: "up"})
}
