package app

import (
	"context"
	"fmt"
	"time"

	"mini_painel_worker/internal/domain/alert"
	"mini_painel_worker/internal/domain/report"
	"mini_painel_worker/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

const (
	dayFormat  = "2006-01-02"
	timeFormat = "15:04"
)

// statsProvider computes report stats for an inclusive calendar-day range.
type statsProvider interface {
	StatsForRange(ctx context.Context, start, end time.Time) (report.Stats, error)
}

// payloadSender delivers a report payload to the outbound webhook.
type payloadSender interface {
	Send(ctx context.Context, p report.Payload) error
}

// AutomationService evaluates, once per tick, whether the daily or weekly
// report is due and orchestrates aggregation, delivery and watermarking.
type AutomationService struct {
	settings *settings.Client
	stats    statsProvider
	delivery payloadSender
	notifier alert.Notifier // optional, may be nil
	logger   *logrus.Logger
	// retryFailedReports delays the watermark write until a delivery succeeds,
	// so a failed report is retried on the next tick instead of forfeited.
	retryFailedReports bool
	now                func() time.Time
}

func NewAutomationService(
	sc *settings.Client,
	stats statsProvider,
	delivery payloadSender,
	notifier alert.Notifier,
	logger *logrus.Logger,
	retryFailedReports bool,
) *AutomationService {
	return &AutomationService{
		settings:           sc,
		stats:              stats,
		delivery:           delivery,
		notifier:           notifier,
		logger:             logger,
		retryFailedReports: retryFailedReports,
		now:                time.Now,
	}
}

// RunTick evaluates both cadences for the given instant, daily before weekly.
// A failure in one cadence never prevents the other from being evaluated.
func (s *AutomationService) RunTick(ctx context.Context, now time.Time) {
	s.logger.Debugf("[%s] Checking automations...", now.Format(timeFormat))
	s.runCadence(ctx, settings.CadenceDaily, now)
	s.runCadence(ctx, settings.CadenceWeekly, now)
}

func (s *AutomationService) runCadence(ctx context.Context, cadence settings.Cadence, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Panic evaluating %s automation: %v", cadence, r)
		}
	}()

	var err error
	switch cadence {
	case settings.CadenceWeekly:
		err = s.evaluateWeekly(ctx, now)
	default:
		err = s.evaluateDaily(ctx, now)
	}
	if err != nil {
		s.logger.WithError(err).Errorf("Error in %s automation", cadence)
	}
}

// evaluateDaily triggers yesterday's report once the configured wall-clock
// time has passed and the watermark shows no trigger for today yet. The >=
// comparison is what catches up after downtime: a late first tick still fires,
// but only once per day.
func (s *AutomationService) evaluateDaily(ctx context.Context, now time.Time) error {
	cfg := s.settings.DailyConfig(ctx)
	if !cfg.Enabled || cfg.Time == "" {
		return nil
	}
	if now.Format(timeFormat) < cfg.Time {
		return nil
	}
	if s.settings.LastRun(ctx, settings.CadenceDaily) == now.Format(dayFormat) {
		return nil
	}

	s.logger.Info("Triggering Daily Report...")
	yesterday := now.AddDate(0, 0, -1)
	return s.trigger(ctx, settings.CadenceDaily, report.Payload{
		Type:        report.TypeDaily,
		ReportDate:  yesterday.Format(dayFormat),
		TriggerTime: now.Format(time.RFC3339),
	}, yesterday, yesterday, now)
}

// evaluateWeekly works like evaluateDaily but additionally requires the
// configured weekday, and reports on the trailing 7-day window ending yesterday.
func (s *AutomationService) evaluateWeekly(ctx context.Context, now time.Time) error {
	cfg := s.settings.WeeklyConfig(ctx)
	if !cfg.Enabled || cfg.Time == "" {
		return nil
	}
	if int(now.Weekday()) != int(cfg.Day) {
		return nil
	}
	if now.Format(timeFormat) < cfg.Time {
		return nil
	}
	if s.settings.LastRun(ctx, settings.CadenceWeekly) == now.Format(dayFormat) {
		return nil
	}

	s.logger.Info("Triggering Weekly Report...")
	start := now.AddDate(0, 0, -7)
	end := now.AddDate(0, 0, -1)
	return s.trigger(ctx, settings.CadenceWeekly, report.Payload{
		Type:        report.TypeWeekly,
		ReportDate:  fmt.Sprintf("%s to %s", start.Format(dayFormat), end.Format(dayFormat)),
		TriggerTime: now.Format(time.RFC3339),
	}, start, end, now)
}

func (s *AutomationService) trigger(ctx context.Context, cadence settings.Cadence, payload report.Payload, start, end, now time.Time) error {
	stats, err := s.stats.StatsForRange(ctx, start, end)
	if err != nil {
		// No watermark write: the trigger decision was never completed, so
		// the next tick will try again.
		return fmt.Errorf("failed to compute %s stats: %w", payload.Type, err)
	}
	payload.Stats = stats

	sendErr := s.delivery.Send(ctx, payload)
	if sendErr != nil {
		s.logger.WithError(sendErr).Errorf("%s delivery failed", payload.Type)
		s.alertAdmin(fmt.Sprintf("Falha no envio do %s: %v", payload.Type, sendErr))
	}

	if sendErr == nil || !s.retryFailedReports {
		if err := s.settings.SetLastRun(ctx, cadence, now.Format(dayFormat)); err != nil {
			s.logger.WithError(err).Errorf("Failed to persist %s watermark", cadence)
			return err
		}
	}

	if sendErr == nil {
		s.logger.Infof("%s sent!", payload.Type)
	}
	return sendErr
}

// TriggerManual computes and sends a one-day report outside the schedule,
// mirroring the dashboard's manual dispatch.
func (s *AutomationService) TriggerManual(ctx context.Context, day time.Time) error {
	stats, err := s.stats.StatsForRange(ctx, day, day)
	if err != nil {
		return fmt.Errorf("failed to compute manual report stats: %w", err)
	}
	return s.delivery.Send(ctx, report.Payload{
		Type:        report.TypeManual,
		ReportDate:  day.Format(dayFormat),
		TriggerTime: s.now().Format(time.RFC3339),
		Stats:       stats,
	})
}

func (s *AutomationService) alertAdmin(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(text); err != nil {
		s.logger.WithError(err).Warn("Failed to send admin alert")
	}
}
