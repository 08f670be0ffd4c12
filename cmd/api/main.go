package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	_ "github.com/createconomy/cemvp/docs"
	"github.com/createconomy/cemvp/internal/auth"
	"github.com/createconomy/cemvp/internal/background"
	"github.com/createconomy/cemvp/internal/config"
	"github.com/createconomy/cemvp/internal/database"
	"github.com/createconomy/cemvp/internal/handlers"
	"github.com/createconomy/cemvp/internal/identity"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/internal/repositories"
	"github.com/createconomy/cemvp/internal/routes"
	"github.com/createconomy/cemvp/internal/services"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
	pkglogger "github.com/createconomy/cemvp/pkg/logger"
)

// @title Createconomy API
// @version 1.0
// @description Waitlist, blog and OAuth onboarding backend for the Createconomy marketing site.
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db)
	waitlistRepo := repositories.NewWaitlistRepository(db)
	blogRepo := repositories.NewBlogRepository(db)

	// Onboarding primitives
	classifier := auth.NewRoleClassifier(auth.RoleConfig{
		AdminEmails:        cfg.Roles.AdminEmails,
		AdminEmailDomains:  cfg.Roles.AdminEmailDomains,
		SellerEmailDomains: cfg.Roles.SellerEmailDomains,
		DefaultRole:        models.Role(cfg.Roles.DefaultRole),
	})
	pins := auth.NewPinGenerator(cfg.MFA.PinTTL)
	sessionVerifier := auth.NewSessionVerifier(cfg.Identity.JWTSecret)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// AWS SES email channel
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	notifier, err := services.NewSESNotifier(initCtx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.SendRate, logger)
	initCancel()
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}
	if !notifier.IsConfigured() {
		logger.Warn("email channel not configured, admin setup and MFA emails are disabled")
	}

	// Initialize services
	onboardingService := services.NewOnboardingService(profileRepo, classifier, pins, notifier, cfg.Server.SiteURL, logger, auditLogger)
	mfaService := services.NewMFAService(profileRepo, pins, notifier, logger, auditLogger)
	waitlistService := services.NewWaitlistService(waitlistRepo, services.WaitlistConfig{
		MaxPerIP: cfg.Waitlist.MaxPerIP,
		Window:   cfg.Waitlist.Window,
	}, logger)
	blogService := services.NewBlogService(blogRepo, logger)

	identityClient := identity.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, nil)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Identity.CookieDomain,
		Secure:   cfg.Identity.CookieSecure,
		SameSite: "lax",
	}

	// Initialize handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(identityClient, onboardingService, mfaService, cookieConfig, cfg.Server.SiteURL, logger, auditLogger),
		MFA:       handlers.NewMFAHandler(mfaService, logger),
		Waitlist:  handlers.NewWaitlistHandler(waitlistService, ipConfig, logger),
		Blog:      handlers.NewBlogHandler(blogService),
		Dashboard: handlers.NewDashboardHandler(onboardingService),
		Health:    handlers.NewHealthHandler(db),
	}

	// Setup router
	router := chi.NewRouter()
	routes.UseGlobalMiddleware(router, routes.GlobalConfig{
		Env:            cfg.Server.Env,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IPConfig:       ipConfig,
		Logger:         logger,
	})

	// Register routes
	routes.RegisterRoutes(router, h, sessionVerifier, mfaService, ipConfig, logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start PIN scrubber
	scrubber := background.NewPinScrubber(profileRepo, logger, cfg.MFA.CleanupInterval)
	scrubCtx, scrubCancel := context.WithCancel(context.Background())
	defer scrubCancel()

	go scrubber.Start(scrubCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	scrubCancel()
	scrubber.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
