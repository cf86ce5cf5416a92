package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// SmartDesk REST backend configuration
	Backend BackendConfig

	// Session configuration (toast flash cookies, page session cache)
	Session SessionConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration for the JSON endpoints
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig holds the upstream API configuration
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// SessionConfig holds flash cookie and page session settings
type SessionConfig struct {
	Secret       string
	ToastTTL     time.Duration
	FormTokenTTL time.Duration // lifetime of the token in rendered forms
	PageTTL      time.Duration
	SweepSpec    string // cron spec for the page session sweeper
	SecureCookie bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	FormRPS           float64 // Stricter limit for login/signup/analyze/submit posts
	FormBurst         int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name         string
	Version      string
	Environment  string
	ShowcaseFile string // optional YAML overriding the embedded landing page charts
}

// Load loads configuration from environment variables.
// envFiles are passed to godotenv; with none given it looks for .env in the working directory.
func Load(envFiles ...string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
			Timeout: getDurationOrDefault("BACKEND_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Secret:       os.Getenv("SESSION_SECRET"),
			ToastTTL:     getDurationOrDefault("TOAST_TTL", time.Minute),
			FormTokenTTL: getDurationOrDefault("FORM_TOKEN_TTL", 2*time.Hour),
			PageTTL:      getDurationOrDefault("PAGE_SESSION_TTL", 10*time.Minute),
			SweepSpec:    getEnvOrDefault("PAGE_SESSION_SWEEP", "@every 1m"),
			SecureCookie: getBoolOrDefault("SESSION_SECURE_COOKIE", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			FormRPS:           getFloatOrDefault("RATE_LIMIT_FORM_RPS", 1),
			FormBurst:         getIntOrDefault("RATE_LIMIT_FORM_BURST", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:         getEnvOrDefault("APP_NAME", "smartdesk-web"),
			Version:      getEnvOrDefault("APP_VERSION", "dev"),
			Environment:  getEnvOrDefault("APP_ENV", "development"),
			ShowcaseFile: os.Getenv("SHOWCASE_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.Backend.URL == "" {
		errs = append(errs, "BACKEND_URL is required")
	} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "BACKEND_URL must be an absolute URL")
	}

	if c.Session.Secret == "" {
		errs = append(errs, "SESSION_SECRET is required")
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.Session.Secret) < 32 {
			errs = append(errs, "SESSION_SECRET must be at least 32 characters in production")
		}

		if !c.Session.SecureCookie {
			errs = append(errs, "SESSION_SECURE_COOKIE must be enabled in production")
		}
	}

	// Logical validations
	if c.Backend.Timeout <= 0 {
		errs = append(errs, "BACKEND_TIMEOUT must be positive")
	}

	if c.Session.PageTTL <= 0 {
		errs = append(errs, "PAGE_SESSION_TTL must be positive")
	}

	if c.Session.ToastTTL <= 0 {
		errs = append(errs, "TOAST_TTL must be positive")
	}
	if c.Session.FormTokenTTL <= 0 {
		errs = append(errs, "FORM_TOKEN_TTL must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Backend: %s, Session: [REDACTED], RateLimit: %v, Environment: %s}",
		c.Server.Port,
		redactURL(c.Backend.URL),
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL strips credentials from a URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		u.User = url.User("REDACTED")
	}
	return u.String()
}
