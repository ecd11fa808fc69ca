package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"mini_painel_worker/internal/domain/report"
	"mini_painel_worker/internal/domain/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	stats  report.Stats
	err    error
	ranges [][2]time.Time
}

func (f *fakeStats) StatsForRange(_ context.Context, start, end time.Time) (report.Stats, error) {
	f.ranges = append(f.ranges, [2]time.Time{start, end})
	return f.stats, f.err
}

type fakeSender struct {
	err      error
	payloads []report.Payload
}

func (f *fakeSender) Send(_ context.Context, p report.Payload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(text string) error {
	f.messages = append(f.messages, text)
	return nil
}

// monday0915 is a Monday (weekday 1) at 09:15 local wall clock.
var monday0915 = time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)

func newAutomation(store *fakeStore, stats *fakeStats, sender *fakeSender, retryFailed bool) *AutomationService {
	log := testLogger()
	return NewAutomationService(settings.NewClient(store, log), stats, sender, nil, log, retryFailed)
}

func TestDailyTriggerLateCatchUp(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	stats := &fakeStats{}
	sender := &fakeSender{}
	svc := newAutomation(store, stats, sender, false)

	// First tick after downtime is well past 08:00: must fire exactly once.
	svc.RunTick(ctx, monday0915)

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Equal(t, report.TypeDaily, p.Type)
	assert.Equal(t, "2025-03-09", p.ReportDate)
	assert.Equal(t, monday0915.Format(time.RFC3339), p.TriggerTime)
	assert.Equal(t, "2025-03-10", store.values[settings.KeyLastRunDaily])

	// Yesterday's full day is the report window.
	require.Len(t, stats.ranges, 1)
	assert.Equal(t, monday0915.AddDate(0, 0, -1), stats.ranges[0][0])
	assert.Equal(t, monday0915.AddDate(0, 0, -1), stats.ranges[0][1])
}

func TestDailyTriggerIdempotentWithinDay(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	sender := &fakeSender{}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)
	svc.RunTick(ctx, monday0915.Add(time.Minute))
	svc.RunTick(ctx, monday0915.Add(5*time.Hour))

	assert.Len(t, sender.payloads, 1, "watermark must suppress re-triggering for the rest of the day")

	// A restart mid-day builds a fresh service over the same persisted
	// watermark and must still not re-trigger.
	restarted := newAutomation(store, &fakeStats{}, sender, false)
	restarted.RunTick(ctx, monday0915.Add(6*time.Hour))
	assert.Len(t, sender.payloads, 1)

	// The next day it fires again.
	svc.RunTick(ctx, monday0915.AddDate(0, 0, 1))
	assert.Len(t, sender.payloads, 2)
}

func TestDailyNotDueBeforeConfiguredTime(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"10:00"}`
	sender := &fakeSender{}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)
	assert.Empty(t, sender.payloads)
	assert.NotContains(t, store.values, settings.KeyLastRunDaily)
}

func TestDailyDisabledOrAbsentConfig(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	sender := &fakeSender{}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)
	assert.Empty(t, sender.payloads, "absent config must behave as disabled")

	store.values[settings.KeyDailyConfig] = `{"enabled":false,"time":"08:00"}`
	svc.RunTick(ctx, monday0915)
	assert.Empty(t, sender.payloads)
}

func TestWeeklyRequiresConfiguredWeekday(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	// Tuesday (2) configured; monday0915 is a Monday.
	store.values[settings.KeyWeeklyConfig] = `{"enabled":true,"day":"2","time":"08:00"}`
	sender := &fakeSender{}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)
	assert.Empty(t, sender.payloads)

	store.values[settings.KeyWeeklyConfig] = `{"enabled":true,"day":"1","time":"08:00"}`
	svc.RunTick(ctx, monday0915)
	require.Len(t, sender.payloads, 1)

	p := sender.payloads[0]
	assert.Equal(t, report.TypeWeekly, p.Type)
	assert.Equal(t, "2025-03-03 to 2025-03-09", p.ReportDate)
	assert.Equal(t, "2025-03-10", store.values[settings.KeyLastRunWeekly])
}

func TestWeeklyWindowTrailsSevenDays(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyWeeklyConfig] = `{"enabled":true,"day":"1","time":"08:00"}`
	stats := &fakeStats{}
	svc := newAutomation(store, stats, &fakeSender{}, false)

	svc.RunTick(ctx, monday0915)

	require.Len(t, stats.ranges, 1)
	assert.Equal(t, monday0915.AddDate(0, 0, -7), stats.ranges[0][0])
	assert.Equal(t, monday0915.AddDate(0, 0, -1), stats.ranges[0][1])
}

func TestBothCadencesFireOnSameTick(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	store.values[settings.KeyWeeklyConfig] = `{"enabled":true,"day":"1","time":"08:00"}`
	sender := &fakeSender{}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)

	require.Len(t, sender.payloads, 2)
	assert.Equal(t, report.TypeDaily, sender.payloads[0].Type, "daily is evaluated before weekly")
	assert.Equal(t, report.TypeWeekly, sender.payloads[1].Type)
}

func TestWatermarkAdvancesDespiteDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	sender := &fakeSender{err: errors.New("webhook delivery failed")}
	svc := newAutomation(store, &fakeStats{}, sender, false)

	svc.RunTick(ctx, monday0915)
	assert.Equal(t, "2025-03-10", store.values[settings.KeyLastRunDaily],
		"default policy forfeits the day's report rather than retry-storming")

	svc.RunTick(ctx, monday0915.Add(time.Minute))
	assert.Len(t, sender.payloads, 1)
}

func TestRetryFailedReportsDefersWatermark(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	sender := &fakeSender{err: errors.New("webhook delivery failed")}
	svc := newAutomation(store, &fakeStats{}, sender, true)

	svc.RunTick(ctx, monday0915)
	assert.NotContains(t, store.values, settings.KeyLastRunDaily)

	// The next tick retries; once delivery succeeds the watermark advances.
	sender.err = nil
	svc.RunTick(ctx, monday0915.Add(time.Minute))
	assert.Len(t, sender.payloads, 2)
	assert.Equal(t, "2025-03-10", store.values[settings.KeyLastRunDaily])
}

func TestStatsFailureLeavesWatermarkForNextTick(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	stats := &fakeStats{err: errors.New("db down")}
	sender := &fakeSender{}
	svc := newAutomation(store, stats, sender, false)

	svc.RunTick(ctx, monday0915)
	assert.Empty(t, sender.payloads)
	assert.NotContains(t, store.values, settings.KeyLastRunDaily)

	stats.err = nil
	svc.RunTick(ctx, monday0915.Add(time.Minute))
	assert.Len(t, sender.payloads, 1)
}

func TestDailyFailureDoesNotBlockWeekly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	store.values[settings.KeyWeeklyConfig] = `{"enabled":true,"day":"1","time":"08:00"}`
	stats := &fakeStats{err: errors.New("db down")}
	sender := &fakeSender{}
	svc := newAutomation(store, stats, sender, false)

	// Daily aggregation fails, weekly must still be evaluated on the same
	// tick. Clear the error between cadences via the sender-visible order.
	svc.runCadence(ctx, settings.CadenceDaily, monday0915)
	stats.err = nil
	svc.runCadence(ctx, settings.CadenceWeekly, monday0915)

	require.Len(t, sender.payloads, 1)
	assert.Equal(t, report.TypeWeekly, sender.payloads[0].Type)
}

func TestAdminNotifiedOnDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.values[settings.KeyDailyConfig] = `{"enabled":true,"time":"08:00"}`
	sender := &fakeSender{err: errors.New("webhook delivery failed")}
	notifier := &fakeNotifier{}
	log := testLogger()
	svc := NewAutomationService(settings.NewClient(store, log), &fakeStats{}, sender, notifier, log, false)

	svc.RunTick(ctx, monday0915)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "daily_report")
}

func TestTriggerManual(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	stats := &fakeStats{}
	sender := &fakeSender{}
	svc := newAutomation(store, stats, sender, false)
	svc.now = func() time.Time { return monday0915 }

	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TriggerManual(ctx, day))

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Equal(t, report.TypeManual, p.Type)
	assert.Equal(t, "2025-03-05", p.ReportDate)
	assert.Equal(t, monday0915.Format(time.RFC3339), p.TriggerTime)

	require.Len(t, stats.ranges, 1)
	assert.Equal(t, day, stats.ranges[0][0])
	assert.Equal(t, day, stats.ranges[0][1])

	// Manual dispatch never touches the scheduled watermarks.
	assert.NotContains(t, store.values, settings.KeyLastRunDaily)
}
