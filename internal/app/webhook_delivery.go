package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mini_painel_worker/internal/domain/audit"
	"mini_painel_worker/internal/domain/report"
	"mini_painel_worker/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// placeholderURLMarker shows up in freshly provisioned dashboards where the
// user never replaced the example webhook URL.
const placeholderURLMarker = "your-endpoint-here"

// WebhookDelivery posts report payloads to the configured webhook with
// exponential backoff, recording every outcome in the execution log.
type WebhookDelivery struct {
	settings    *settings.Client
	execLog     *ExecutionLog
	logger      *logrus.Logger
	httpClient  *http.Client
	fallbackURL string
	maxRetries  int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewWebhookDelivery(
	sc *settings.Client,
	execLog *ExecutionLog,
	logger *logrus.Logger,
	fallbackURL string,
	maxRetries int,
	requestTimeout time.Duration,
) *WebhookDelivery {
	return &WebhookDelivery{
		settings:    sc,
		execLog:     execLog,
		logger:      logger,
		httpClient:  &http.Client{Timeout: requestTimeout},
		fallbackURL: fallbackURL,
		maxRetries:  maxRetries,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// envelope is the wire shape: the per-attempt fields merged with the
// cadence-specific payload at the top level.
type envelope struct {
	Timestamp  string `json:"timestamp"`
	RetryCount int    `json:"retryCount"`
	report.Payload
}

// Send delivers the payload, retrying up to maxRetries with 1s, 2s, 4s...
// backoff between attempts. An unconfigured webhook is not an error: it is
// logged with zero attempts and the scheduler moves on. A non-nil return means
// every attempt failed.
func (w *WebhookDelivery) Send(ctx context.Context, p report.Payload) error {
	url := w.settings.WebhookURL(ctx, w.fallbackURL)
	if url == "" || strings.Contains(url, placeholderURLMarker) {
		msg := "Webhook URL not configured"
		w.logger.Warn(msg)
		w.execLog.Append(ctx, p.Type, audit.StatusError, msg, 0)
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		w.logger.Infof("Sending webhook to %s... (Attempt %d/%d)", url, attempt, w.maxRetries)

		err := w.post(ctx, url, p, attempt-1)
		if err == nil {
			w.logger.Info("Webhook sent successfully")
			w.execLog.Append(ctx, p.Type, audit.StatusSuccess,
				fmt.Sprintf("Enviado com sucesso na tentativa %d", attempt), attempt)
			return nil
		}

		w.logger.WithError(err).Warnf("Attempt %d failed", attempt)
		lastErr = err

		if attempt < w.maxRetries {
			delay := time.Duration(1<<(attempt-1)) * time.Second
			if serr := w.sleep(ctx, delay); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	w.logger.Error("All retry attempts failed")
	w.execLog.Append(ctx, p.Type, audit.StatusError,
		fmt.Sprintf("Falha após %d tentativas: %v", w.maxRetries, lastErr), w.maxRetries)
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", w.maxRetries, lastErr)
}

func (w *WebhookDelivery) post(ctx context.Context, url string, p report.Payload, retryCount int) error {
	body, err := json.Marshal(envelope{
		Timestamp:  w.now().UTC().Format(time.RFC3339),
		RetryCount: retryCount,
		Payload:    p,
	})
	if err != nil {
		return fmt.Errorf("error encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook failed: %s (%d)", resp.Status, resp.StatusCode)
	}
	return nil
}

// sleepContext waits for d, returning early with the context's error if it is
// cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
