package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"mini_painel_worker/internal/domain/audit"

	"github.com/sirupsen/logrus"
)

// Client wraps a Store with typed accessors for the automation settings. All
// JSON encoding and decoding of setting values is confined to this type; the
// rest of the worker never handles raw setting strings.
type Client struct {
	store  Store
	logger *logrus.Logger
}

func NewClient(store Store, logger *logrus.Logger) *Client {
	return &Client{store: store, logger: logger}
}

// GetOrDefault reads a setting, degrading to def when the key is absent or the
// store is unreachable. Read failures are logged, never propagated.
func (c *Client) GetOrDefault(ctx context.Context, key, def string) string {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		if err != ErrSettingNotFound {
			c.logger.WithError(err).Warnf("Failed to read setting %s, using default", key)
		}
		return def
	}
	if value == "" {
		return def
	}
	return value
}

// Set writes a setting. Write failures are propagated: losing a watermark
// write silently would break trigger de-duplication.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if err := c.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("error saving setting %s: %w", key, err)
	}
	return nil
}

// DailyConfig returns the daily report automation config. An absent or
// malformed setting reads as the zero value, i.e. disabled.
func (c *Client) DailyConfig(ctx context.Context) DailyReportConfig {
	var cfg DailyReportConfig
	raw := c.GetOrDefault(ctx, KeyDailyConfig, "{}")
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		c.logger.WithError(err).Warnf("Malformed %s setting, treating as disabled", KeyDailyConfig)
		return DailyReportConfig{}
	}
	return cfg
}

// WeeklyConfig returns the weekly report automation config, disabled on
// absence or decode failure.
func (c *Client) WeeklyConfig(ctx context.Context) WeeklyReportConfig {
	var cfg WeeklyReportConfig
	raw := c.GetOrDefault(ctx, KeyWeeklyConfig, "{}")
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		c.logger.WithError(err).Warnf("Malformed %s setting, treating as disabled", KeyWeeklyConfig)
		return WeeklyReportConfig{}
	}
	return cfg
}

// LastRun returns the cadence's watermark: the last calendar day ("YYYY-MM-DD")
// a report of that cadence was triggered, or "" if never.
func (c *Client) LastRun(ctx context.Context, cadence Cadence) string {
	return c.GetOrDefault(ctx, cadence.LastRunKey(), "")
}

// SetLastRun advances the cadence's watermark to the given calendar day.
func (c *Client) SetLastRun(ctx context.Context, cadence Cadence, day string) error {
	return c.Set(ctx, cadence.LastRunKey(), day)
}

// WebhookURL resolves the outbound webhook target, preferring the stored
// setting over the environment-level fallback.
func (c *Client) WebhookURL(ctx context.Context, fallback string) string {
	return c.GetOrDefault(ctx, KeyWebhookURL, fallback)
}

// ExecutionLogs returns the persisted automation log, newest first. A missing
// or malformed blob reads as an empty log.
func (c *Client) ExecutionLogs(ctx context.Context) []audit.Entry {
	raw := c.GetOrDefault(ctx, KeyAutomationLogs, "[]")
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.WithError(err).Warnf("Malformed %s setting, resetting log", KeyAutomationLogs)
		return nil
	}
	return entries
}

// SaveExecutionLogs persists the automation log as a single blob.
func (c *Client) SaveExecutionLogs(ctx context.Context, entries []audit.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error encoding execution log: %w", err)
	}
	return c.Set(ctx, KeyAutomationLogs, string(data))
}
