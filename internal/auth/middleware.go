package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing session claims in context
	UserContextKey contextKey = "user"
)

// StatusChecker derives the onboarding status of an authenticated user
type StatusChecker interface {
	CheckStatus(ctx context.Context, userID string) (*models.MFAStatus, error)
}

// SessionMiddleware resolves the session token, if any, and injects its claims into context.
// Requests without a valid token pass through unauthenticated.
func SessionMiddleware(sv *SessionVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sv.ValidateToken(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// RequireSession rejects requests that carry no valid session
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r) == nil {
			pkghttp.WriteUnauthorized(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCleared only lets sessions through that have no outstanding onboarding step.
// Must run after RequireSession.
func RequireCleared(checker StatusChecker, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			status, err := checker.CheckStatus(r.Context(), claims.UserID())
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteNotFound(w, "Profile not found")
					return
				}
				logger.Error("failed to check onboarding status",
					slog.String("user_id", claims.UserID()),
					slog.Any("error", err),
				)
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if gate := status.Gate(); gate != models.GateCleared {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(GateResponse{
					Success: false,
					Error:   "Onboarding incomplete",
					Gate:    gate,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GateResponse is returned when a session still has an onboarding step to complete
type GateResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Gate    models.Gate `json:"gate"`
}

// WithUser returns a copy of ctx carrying the session claims
func WithUser(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// GetUserFromContext extracts session claims from request context
func GetUserFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// tokenFromRequest prefers the session cookie, then a Bearer Authorization header
func tokenFromRequest(r *http.Request) string {
	if token := GetCookie(r, AccessTokenCookie); token != "" {
		return token
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
