package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant resolution modes selectable via TENANT_MODE.
const (
	TenantModeStatic   = "static"
	TenantModePostgres = "postgres"
)

// defaultExemptPaths are served without a session credential. Exact matches
// only; subpaths stay gated.
var defaultExemptPaths = []string{
	"/auth/login",
	"/auth/callback",
	"/docs",
	"/openapi.json",
	"/redoc",
	"/health",
	"/live",
	"/ready",
	"/metrics",
	"/favicon.ico",
}

// Config holds all configuration for the identity gateway
type Config struct {
	// Server
	Port     string `env:"PORT" default:"8000"`
	Host     string `env:"HOST" default:"0.0.0.0"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`
	Env      string `env:"GO_ENV" default:"development"`

	// Session credential
	JWTSecret string        `env:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" default:"168h"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" required:"true"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" default:"http://localhost:8000/auth/callback"`

	// Login handshake
	StateTTL time.Duration `env:"STATE_TTL" default:"10m"`

	// Credential gate
	ExemptPaths []string `env:"EXEMPT_PATHS"`

	// Tenant resolution
	TenantMode      string `env:"TENANT_MODE" default:"static"`
	DefaultTenantID string `env:"DEFAULT_TENANT_ID" default:"11111111-1111-1111-1111-111111111111"`

	// Database (required when TENANT_MODE=postgres)
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseHost     string `env:"DB_HOST" default:"identity-postgres"`
	DatabasePort     string `env:"DB_PORT" default:"5432"`
	DatabaseName     string `env:"DB_NAME" default:"identity_db"`
	DatabaseUser     string `env:"DB_USER" default:"identity_user"`
	DatabasePassword string `env:"DB_PASSWORD"`
	DatabaseSSLMode  string `env:"DB_SSL_MODE" default:"require"`

	// Rate limiting on /auth routes
	AuthRateLimit int `env:"AUTH_RATE_LIMIT" default:"10"`
	AuthRateBurst int `env:"AUTH_RATE_BURST" default:"10"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "8000")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	config.Env = getEnvOrDefault("GO_ENV", "development")

	// Session credential configuration. The signing key is the one secret the
	// service cannot run without, so its absence aborts startup.
	config.JWTSecret = getEnv("JWT_SECRET")
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	config.JWTExpiry, err = getDurationEnv("JWT_EXPIRY", "168h")
	if err != nil {
		return nil, err
	}

	// Google OAuth configuration
	config.GoogleClientID = getEnv("GOOGLE_CLIENT_ID")
	if config.GoogleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}

	config.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET")
	if config.GoogleClientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}

	config.GoogleRedirectURL = getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:8000/auth/callback")

	config.StateTTL, err = getDurationEnv("STATE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	// Credential gate configuration
	config.ExemptPaths = getListEnv("EXEMPT_PATHS", defaultExemptPaths)

	// Tenant resolution configuration
	config.TenantMode = getEnvOrDefault("TENANT_MODE", TenantModeStatic)
	config.DefaultTenantID = getEnvOrDefault("DEFAULT_TENANT_ID", "11111111-1111-1111-1111-111111111111")

	// Database configuration, only enforced for the persistent tenant mode
	config.DatabaseURL = getEnv("DATABASE_URL")
	config.DatabaseHost = getEnvOrDefault("DB_HOST", "identity-postgres")
	config.DatabasePort = getEnvOrDefault("DB_PORT", "5432")
	config.DatabaseName = getEnvOrDefault("DB_NAME", "identity_db")
	config.DatabaseUser = getEnvOrDefault("DB_USER", "identity_user")
	config.DatabasePassword = getEnv("DB_PASSWORD")
	config.DatabaseSSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

	if config.TenantMode == TenantModePostgres && config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when TENANT_MODE=postgres")
	}

	// Rate limiting configuration
	config.AuthRateLimit, err = getIntEnv("AUTH_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	config.AuthRateBurst, err = getIntEnv("AUTH_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range (1-65535)
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// Validate tenant mode
	if c.TenantMode != TenantModeStatic && c.TenantMode != TenantModePostgres {
		return fmt.Errorf("invalid tenant mode: %s (must be one of: %s, %s)", c.TenantMode, TenantModeStatic, TenantModePostgres)
	}

	if err := uuid.Validate(c.DefaultTenantID); err != nil {
		return fmt.Errorf("invalid default tenant id: %s", c.DefaultTenantID)
	}

	for _, path := range c.ExemptPaths {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("exempt path must start with /: %s", path)
		}
	}

	// Validate credential lifetime (minimum 1 minute)
	if c.JWTExpiry < time.Minute {
		return fmt.Errorf("credential expiry must be at least 1 minute, got: %v", c.JWTExpiry)
	}

	// Validate handshake state lifetime (minimum 1 minute)
	if c.StateTTL < time.Minute {
		return fmt.Errorf("state TTL must be at least 1 minute, got: %v", c.StateTTL)
	}

	if c.AuthRateLimit < 1 {
		return fmt.Errorf("auth rate limit must be at least 1, got: %d", c.AuthRateLimit)
	}
	if c.AuthRateBurst < 1 {
		return fmt.Errorf("auth rate burst must be at least 1, got: %d", c.AuthRateBurst)
	}

	return nil
}

// Helper functions

// getEnv reads an environment variable, honoring a KEY_FILE indirection so
// secrets can be mounted as files.
func getEnv(key string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return os.Getenv(key)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration variable, accepting either a Go duration
// string ("168h") or an integer number of seconds ("604800").
func getDurationEnv(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}

// getListEnv parses a comma-separated list variable.
func getListEnv(key string, defaultValue []string) []string {
	raw := getEnv(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := getEnv(key)
	if raw == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, raw)
	}
	return parsed, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
