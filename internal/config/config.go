// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/journey.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// SendGrid
	SendGridAPIKey     string
	FromEmail          string
	FromName           string
	TemplatePreArrival string
	TemplatePostPlay   string

	// Journey timing (days relative to the play date)
	PreArrivalDays int
	PostPlayDays   int

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8501",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		SendGridAPIKey:     envOr("SENDGRID_API_KEY", ""),
		FromEmail:          envOr("FROM_EMAIL", ""),
		FromName:           envOr("FROM_NAME", "Streamsong Golf Resort"),
		TemplatePreArrival: envOr("SENDGRID_TEMPLATE_PRE_ARRIVAL", ""),
		TemplatePostPlay:   envOr("SENDGRID_TEMPLATE_POST_PLAY", ""),

		PreArrivalDays: envInt("PRE_ARRIVAL_DAYS", 3),
		PostPlayDays:   envInt("POST_PLAY_DAYS", 2),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Campaigns returns the journey campaigns this deployment runs.
func (c *Config) Campaigns() []journey.Campaign {
	return []journey.Campaign{
		{
			Kind:       journey.PreArrival,
			OffsetDays: c.PreArrivalDays,
			Direction:  1,
			TemplateID: c.TemplatePreArrival,
		},
		{
			Kind:       journey.PostPlay,
			OffsetDays: c.PostPlayDays,
			Direction:  -1,
			TemplateID: c.TemplatePostPlay,
		},
	}
}

// ValidateMail checks that live sends can be attempted for the given kinds.
// A failure here is fatal for the whole run; no batch is started.
func (c *Config) ValidateMail(kinds ...journey.Kind) error {
	if c.SendGridAPIKey == "" {
		return fmt.Errorf("%w: SENDGRID_API_KEY is not set", journey.ErrNotConfigured)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("%w: FROM_EMAIL is not set", journey.ErrNotConfigured)
	}
	for _, k := range kinds {
		switch k {
		case journey.PreArrival:
			if c.TemplatePreArrival == "" {
				return fmt.Errorf("%w: SENDGRID_TEMPLATE_PRE_ARRIVAL is not set", journey.ErrNotConfigured)
			}
		case journey.PostPlay:
			if c.TemplatePostPlay == "" {
				return fmt.Errorf("%w: SENDGRID_TEMPLATE_POST_PLAY is not set", journey.ErrNotConfigured)
			}
		default:
			return fmt.Errorf("%w: %q", journey.ErrUnknownKind, k)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
