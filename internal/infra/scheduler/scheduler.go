package scheduler

import (
	"context"
	"time"

	"mini_painel_worker/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// tickTimeout bounds one tick's work: up to three webhook attempts with their
// backoff sleeps fit comfortably inside a single minute.
const tickTimeout = 1 * time.Minute

// ReportScheduler drives the report automation: it owns the cron engine and
// fires the once-per-minute evaluation tick. One instance per process.
type ReportScheduler struct {
	cronEngine *cron.Cron
	automation *app.AutomationService
	logger     *logrus.Logger
}

func NewReportScheduler(automation *app.AutomationService, logger *logrus.Logger) *ReportScheduler {
	return &ReportScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // schedules follow the server's wall clock
		automation: automation,
		logger:     logger,
	}
}

func (s *ReportScheduler) Start() {
	s.logger.Info("Starting report scheduler...")

	_, err := s.cronEngine.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()
		s.automation.RunTick(ctx, time.Now())
	})
	if err != nil {
		s.logger.Fatalf("Could not add automation tick cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Report scheduler started.")
}

func (s *ReportScheduler) Stop() {
	s.logger.Info("Stopping report scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running tick to finish
	<-ctx.Done()
	s.logger.Info("Report scheduler gracefully stopped.")
}
