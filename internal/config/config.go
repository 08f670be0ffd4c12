package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Identity IdentityConfig
	Email    EmailConfig
	Roles    RolesConfig
	MFA      MFAConfig
	Waitlist WaitlistConfig
}

type DatabaseConfig struct {
	URL               string // Full connection string; takes precedence over the parts below
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	SiteURL        string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// IdentityConfig points at the hosted identity provider (Supabase GoTrue)
type IdentityConfig struct {
	URL          string
	AnonKey      string
	JWTSecret    string
	CookieDomain string
	CookieSecure bool
}

type EmailConfig struct {
	AWSRegion   string // Empty disables outbound email
	FromAddress string
	SendRate    float64 // Messages per second
}

// IsConfigured reports whether outbound email can be sent
func (c EmailConfig) IsConfigured() bool {
	return c.AWSRegion != "" && c.FromAddress != ""
}

type RolesConfig struct {
	AdminEmails        []string
	AdminEmailDomains  []string
	SellerEmailDomains []string
	DefaultRole        string
}

type MFAConfig struct {
	PinTTL          time.Duration
	CleanupInterval time.Duration
}

type WaitlistConfig struct {
	MaxPerIP int
	Window   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("SUPABASE_JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}

	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "cemvp"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Identity: IdentityConfig{
			URL:          supabaseURL,
			AnonKey:      getEnv("SUPABASE_ANON_KEY", ""),
			JWTSecret:    jwtSecret,
			CookieDomain: getEnv("COOKIE_DOMAIN", ""),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", env == "production"),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_SES_REGION", ""),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@createconomy.com"),
			SendRate:    getEnvAsFloat("EMAIL_SEND_RATE", 14),
		},
		Roles: RolesConfig{
			AdminEmails:        getEnvAsList("ADMIN_EMAILS", []string{"developer@createconomy.com"}),
			AdminEmailDomains:  getEnvAsList("ADMIN_EMAIL_DOMAINS", []string{"createconomy.com"}),
			SellerEmailDomains: getEnvAsList("SELLER_EMAIL_DOMAINS", nil),
			DefaultRole:        strings.ToUpper(getEnv("DEFAULT_ROLE", "USER")),
		},
		MFA: MFAConfig{
			PinTTL:          getEnvAsDuration("MFA_PIN_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("PIN_CLEANUP_INTERVAL", 1*time.Hour),
		},
		Waitlist: WaitlistConfig{
			MaxPerIP: getEnvAsInt("WAITLIST_MAX_PER_IP", 5),
			Window:   getEnvAsDuration("WAITLIST_WINDOW", 1*time.Hour),
		},
	}

	if cfg.Database.URL == "" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	switch cfg.Roles.DefaultRole {
	case "USER", "SELLER", "ADMIN":
	default:
		return nil, fmt.Errorf("DEFAULT_ROLE must be one of USER, SELLER, ADMIN (got %q)", cfg.Roles.DefaultRole)
	}

	if cfg.MFA.PinTTL <= 0 {
		return nil, fmt.Errorf("MFA_PIN_TTL must be positive")
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the session signing secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SUPABASE_JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SUPABASE_JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// getEnvAsList splits a comma-separated variable, dropping blank entries
func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return getEnvAsList("ALLOWED_ORIGINS", []string{})
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:3001",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:3001",
	}
}
