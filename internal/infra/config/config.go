package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the worker process.
type AppConfig struct {
	DatabaseURL       string
	DefaultWebhookURL string // env-level fallback when no setting is stored
	LogLevel          string
	Environment       string
	WebhookMaxRetries int
	WebhookTimeout    time.Duration
	// RetryFailedReports controls watermark timing: false (the default)
	// advances the watermark after the trigger decision regardless of delivery
	// outcome, so a failed send forfeits that day's report; true advances it
	// only after a successful delivery, retrying on subsequent ticks.
	RetryFailedReports bool
	TelegramToken      string // optional, enables admin failure alerts
	AdminChatID        int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.DefaultWebhookURL = os.Getenv("N8N_WEBHOOK_URL")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.WebhookMaxRetries = 3
	if s := os.Getenv("WEBHOOK_MAX_RETRIES"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid WEBHOOK_MAX_RETRIES: %q", s)
		}
		cfg.WebhookMaxRetries = n
	}

	cfg.WebhookTimeout = 15 * time.Second
	if s := os.Getenv("WEBHOOK_TIMEOUT_SECONDS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT_SECONDS: %q", s)
		}
		cfg.WebhookTimeout = time.Duration(n) * time.Second
	}

	if s := os.Getenv("RETRY_FAILED_REPORTS"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRY_FAILED_REPORTS: %q", s)
		}
		cfg.RetryFailedReports = b
	}

	// Admin alerts are optional: both values must be present to enable them.
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if idStr := os.Getenv("ADMIN_CHAT_ID"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
		}
		cfg.AdminChatID = id
	}

	return cfg, nil
}

// AlertsEnabled reports whether the optional Telegram admin alerts are configured.
func (c *AppConfig) AlertsEnabled() bool {
	return c.TelegramToken != "" && c.AdminChatID != 0
}
