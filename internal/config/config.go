package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment modes. Production switches error responses to the terse form
// and marks the session cookie Secure.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	Environment string
	DatabaseURL string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration

	// AppBaseURL is the client-facing origin used to build the links embedded
	// in verification and reset emails.
	AppBaseURL  string
	CORSOrigins []string

	EmailDriver  string // "smtp" or "log"
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		Environment: fallback(os.Getenv("APP_ENV"), EnvDevelopment),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "devlinks-api"),
		AppBaseURL:  fallback(os.Getenv("APP_BASE_URL"), "http://localhost:5173"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),

		EmailDriver:  fallback(os.Getenv("EMAIL_DRIVER"), "log"),
		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPUsername: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    fallback(os.Getenv("EMAIL_FROM"), "no-reply@devlinks.app"),
	}

	cfg.SessionTTL = durationEnv("SESSION_TTL_MINUTES", time.Minute, 60)
	cfg.VerifyTokenTTL = durationEnv("VERIFY_TOKEN_TTL_HOURS", time.Hour, 24)
	cfg.ResetTokenTTL = durationEnv("RESET_TOKEN_TTL_MINUTES", time.Minute, 10)
	cfg.SMTPPort = intEnv("SMTP_PORT", 587)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return Config{}, fmt.Errorf("APP_ENV must be %q or %q", EnvDevelopment, EnvProduction)
	}
	if cfg.EmailDriver != "smtp" && cfg.EmailDriver != "log" {
		return Config{}, fmt.Errorf("EMAIL_DRIVER must be \"smtp\" or \"log\", got %q", cfg.EmailDriver)
	}
	if cfg.EmailDriver == "smtp" && cfg.SMTPHost == "" {
		return Config{}, errors.New("SMTP_HOST is required when EMAIL_DRIVER=smtp")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether the terse error mode and secure cookies apply.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func durationEnv(key string, unit time.Duration, def int) time.Duration {
	raw := fallback(os.Getenv(key), strconv.Itoa(def))
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return time.Duration(def) * unit
}

func intEnv(key string, def int) int {
	if n, err := strconv.Atoi(fallback(os.Getenv(key), strconv.Itoa(def))); err == nil && n > 0 {
		return n
	}
	return def
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
