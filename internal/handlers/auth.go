package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/identity"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/internal/services"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

const (
	defaultCallbackNext = "/auth/check-mfa-redirect"
	signInPath          = "/auth/signin"
	authFailedPath      = "/auth/signin?error=auth_failed"
)

// IdentityProvider is the hosted identity service behind OAuth sign-in
type IdentityProvider interface {
	AuthorizeURL(provider, redirectTo string) (*identity.Authorization, error)
	ExchangeCodeForSession(ctx context.Context, code, verifier string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// OnboardingServiceInterface defines the profile provisioning operations
type OnboardingServiceInterface interface {
	OnExternalAuthCallback(ctx context.Context, identity *models.Identity) (*services.CallbackResult, error)
	Summary(ctx context.Context, userID string) (*services.ProfileSummary, error)
}

// AuthHandler handles the OAuth sign-in round trip
type AuthHandler struct {
	provider    IdentityProvider
	onboarding  OnboardingServiceInterface
	mfa         MFAServiceInterface
	cookies     auth.CookieConfig
	siteURL     string
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	provider IdentityProvider,
	onboarding OnboardingServiceInterface,
	mfa MFAServiceInterface,
	cookies auth.CookieConfig,
	siteURL string,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		onboarding:  onboarding,
		mfa:         mfa,
		cookies:     cookies,
		siteURL:     strings.TrimRight(siteURL, "/"),
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// SignIn handles GET /auth/signin/{provider}
//
// @Summary Start OAuth sign-in
// @Tags auth
// @Param provider path string true "google, github, azure or apple"
// @Param next query string false "Relative path to land on after sign-in"
// @Success 302
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /auth/signin/{provider} [get]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))

	redirectTo := h.siteURL + "/auth/callback"
	if next := sanitizeNext(r.URL.Query().Get("next")); next != "" {
		redirectTo += "?next=" + url.QueryEscape(next)
	}

	authz, err := h.provider.AuthorizeURL(provider, redirectTo)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Unsupported provider")
			return
		}
		h.logger.Error("failed to build authorize url", slog.String("provider", provider), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.SetCodeVerifierCookie(w, authz.CodeVerifier, h.cookies)
	http.Redirect(w, r, authz.URL, http.StatusFound)
}

// Callback handles GET /auth/callback, the identity provider's return leg
//
// @Summary OAuth callback
// @Tags auth
// @Param code query string false "Authorization code"
// @Param next query string false "Relative path to land on"
// @Success 302
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	next := sanitizeNext(query.Get("next"))
	if next == "" {
		next = defaultCallbackNext
	}

	code := query.Get("code")
	if code == "" {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	verifier := auth.GetCookie(r, auth.CodeVerifierCookie)
	auth.ClearCodeVerifierCookie(w, h.cookies)

	session, err := h.provider.ExchangeCodeForSession(r.Context(), code, verifier)
	if err != nil || session.User == nil {
		h.logger.Warn("code exchange failed", slog.Any("error", err))
		http.Redirect(w, r, authFailedPath, http.StatusFound)
		return
	}

	result, err := h.onboarding.OnExternalAuthCallback(r.Context(), session.User)
	if err != nil {
		h.logger.Error("failed to provision profile after sign-in",
			slog.String("user_id", session.User.ID),
			slog.Any("error", err))
		http.Redirect(w, r, authFailedPath, http.StatusFound)
		return
	}

	if result.Created {
		h.logger.Info("new profile signed in",
			slog.String("user_id", session.User.ID),
			slog.String("role", string(result.Profile.Role)),
			slog.Bool("notification_sent", result.NotificationSent))
	}

	auth.SetSessionCookies(w, session.AccessToken, session.RefreshToken, session.ExpiresIn, h.cookies)
	http.Redirect(w, r, next, http.StatusFound)
}

// CheckMFARedirect handles GET /auth/check-mfa-redirect and forwards the
// session to its next onboarding step
//
// @Summary Route a session to its next onboarding step
// @Tags auth
// @Success 302
// @Router /auth/check-mfa-redirect [get]
func (h *AuthHandler) CheckMFARedirect(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, signInPath, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.mfa.NextPath(r.Context(), user.UserID()), http.StatusFound)
}

// SignOut handles POST /auth/signout
//
// @Summary Sign out
// @Tags auth
// @Success 302
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := auth.GetCookie(r, auth.AccessTokenCookie); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			h.logger.Warn("identity provider sign-out failed", slog.Any("error", err))
		}
	}

	if user := auth.GetUserFromContext(r); user != nil {
		h.auditLogger.Log(r.Context(), pkglogger.AuditEvent{
			EventType: pkglogger.EventSignOut,
			UserID:    user.UserID(),
			Success:   true,
		})
	}

	auth.ClearSessionCookies(w, h.cookies)
	http.Redirect(w, r, "/", http.StatusFound)
}

// sanitizeNext only allows same-site relative paths
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	if strings.ContainsAny(next, "\r\n") {
		return ""
	}
	return next
}
