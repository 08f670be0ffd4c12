package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/handlers"
	"github.com/createconomy/cemvp/internal/middleware"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// DocsPrefix is where the OpenAPI UI is mounted
const DocsPrefix = "/swagger/"

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth      *handlers.AuthHandler
	MFA       *handlers.MFAHandler
	Waitlist  *handlers.WaitlistHandler
	Blog      *handlers.BlogHandler
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler
}

// GlobalConfig configures the middleware shared by every route
type GlobalConfig struct {
	Env            string
	AllowedOrigins []string
	IPConfig       *pkghttp.IPConfig
	Logger         *slog.Logger
}

// UseGlobalMiddleware installs the router-wide middleware chain.
// RemoteAddr is never rewritten here; client IPs are resolved through IPConfig.
func UseGlobalMiddleware(router chi.Router, cfg GlobalConfig) {
	router.Use(chimw.RequestID)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
		Env:        cfg.Env,
		DocsPrefix: DocsPrefix,
	}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))
	router.Use(middleware.SecureLogger(cfg.Logger, cfg.IPConfig))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessionVerifier *auth.SessionVerifier,
	statusChecker auth.StatusChecker,
	ipConfig *pkghttp.IPConfig,
	logger *slog.Logger,
) {
	authLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit(), ipConfig)
	pinLimit := middleware.RateLimitByIP(middleware.DefaultPinRateLimit(), ipConfig)

	router.Get("/health", h.Health.Health)
	router.Get(DocsPrefix+"*", httpSwagger.Handler(httpSwagger.URL(DocsPrefix+"doc.json")))

	// Public API
	router.Post("/api/waitlist", h.Waitlist.Join)
	router.Get("/api/waitlist/count", h.Waitlist.Count)
	router.Get("/api/blog", h.Blog.List)
	router.Get("/api/blog/{slug}", h.Blog.Get)

	// Everything below may carry a session
	router.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(sessionVerifier))

		// OAuth round trip
		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Get("/auth/signin/{provider}", h.Auth.SignIn)
			r.Get("/auth/callback", h.Auth.Callback)
			r.Get("/auth/check-mfa-redirect", h.Auth.CheckMFARedirect)
			r.Post("/auth/signout", h.Auth.SignOut)
		})

		// Onboarding steps
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/api/auth/check-mfa", h.MFA.CheckMFA)
			r.Post("/api/auth/set-password", h.MFA.SetPassword)
			r.With(pinLimit).Post("/api/auth/send-mfa-pin", h.MFA.SendPin)
			r.With(pinLimit).Post("/api/auth/verify-mfa", h.MFA.VerifyPin)
		})

		// Cleared sessions only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Use(auth.RequireCleared(statusChecker, logger))
			r.Get("/api/dashboard", h.Dashboard.Get)
		})
	})
}
