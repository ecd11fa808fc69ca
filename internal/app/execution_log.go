package app

import (
	"context"
	"time"

	"mini_painel_worker/internal/domain/audit"
	"mini_painel_worker/internal/domain/settings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExecutionLog is the bounded audit trail of automation attempts, persisted as
// a single settings blob. The read-modify-write cycle is not transactional:
// it is only safe because exactly one worker instance runs at a time.
type ExecutionLog struct {
	settings *settings.Client
	logger   *logrus.Logger
	now      func() time.Time
}

func NewExecutionLog(sc *settings.Client, logger *logrus.Logger) *ExecutionLog {
	return &ExecutionLog{
		settings: sc,
		logger:   logger,
		now:      time.Now,
	}
}

// Append prepends a new entry and evicts beyond capacity. Persistence failures
// are logged and swallowed: a lost audit entry must never fail the automation
// outcome it describes.
func (l *ExecutionLog) Append(ctx context.Context, reportType string, status audit.Status, message string, attempts int) {
	entries := l.settings.ExecutionLogs(ctx)

	entry := audit.Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Type:      reportType,
		Status:    status,
		Message:   message,
		Attempts:  attempts,
	}

	entries = append([]audit.Entry{entry}, entries...)
	if len(entries) > audit.MaxEntries {
		entries = entries[:audit.MaxEntries]
	}

	if err := l.settings.SaveExecutionLogs(ctx, entries); err != nil {
		l.logger.WithError(err).Error("Failed to save execution log")
	}
}
