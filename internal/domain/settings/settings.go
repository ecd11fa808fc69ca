package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSettingNotFound is returned by Store.Get when the key has no value.
var ErrSettingNotFound = errors.New("setting not found")

// Well-known keys in the settings store. The dashboard UI reads and writes the
// same keys, so they must not change.
const (
	KeyWebhookURL     = "mini_painel_webhook_url"
	KeyDailyConfig    = "report_auto_daily"
	KeyWeeklyConfig   = "report_auto_weekly"
	KeyLastRunDaily   = "last_run_daily"
	KeyLastRunWeekly  = "last_run_weekly"
	KeyAutomationLogs = "automation_logs"
)

// Store defines the operations for the key-value settings collaborator.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// Cadence identifies a report schedule kind.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// LastRunKey returns the watermark settings key for the cadence.
func (c Cadence) LastRunKey() string {
	if c == CadenceWeekly {
		return KeyLastRunWeekly
	}
	return KeyLastRunDaily
}

// DailyReportConfig is the stored automation config for the daily report.
// An absent or malformed setting is equivalent to the zero value (disabled).
type DailyReportConfig struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"` // "HH:MM", local wall clock
}

// WeeklyReportConfig is the stored automation config for the weekly report.
type WeeklyReportConfig struct {
	Enabled bool    `json:"enabled"`
	Day     Weekday `json:"day"` // 0 = Sunday
	Time    string  `json:"time"`
}

// Weekday is a day-of-week index (0 = Sunday). The dashboard UI stores it as a
// JSON string ("0".."6"), so decoding accepts both string and number forms.
type Weekday int

func (w *Weekday) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*w = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid weekday %q: %w", s, err)
	}
	*w = Weekday(n)
	return nil
}

func (w Weekday) MarshalJSON() ([]byte, error) {
	// Keep the UI's string encoding on round trips.
	return json.Marshal(strconv.Itoa(int(w)))
}
