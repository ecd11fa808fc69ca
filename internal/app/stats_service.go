package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mini_painel_worker/internal/domain/contact"
	"mini_painel_worker/internal/domain/report"

	"github.com/sirupsen/logrus"
)

// rosterLookbackDays is the trailing window used to seed the attendant roster,
// so attendants with no activity in the report window still show up with zeros.
const rosterLookbackDays = 60

// StatsService folds raw scheduling contacts into per-attendant report stats.
type StatsService struct {
	contacts contact.Repository
	logger   *logrus.Logger
	now      func() time.Time
}

func NewStatsService(repo contact.Repository, logger *logrus.Logger) *StatsService {
	return &StatsService{
		contacts: repo,
		logger:   logger,
		now:      time.Now,
	}
}

// StatsForRange aggregates stats for the inclusive calendar-day range
// [start, end]. Only the date part of the arguments is used.
func (s *StatsService) StatsForRange(ctx context.Context, start, end time.Time) (report.Stats, error) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())

	s.logger.Debugf("Fetching stats from %s to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))

	stats := report.Stats{ByAttendant: make(map[string]report.AttendantStats)}

	roster, err := s.contacts.ListAttendantsSince(ctx, s.now().AddDate(0, 0, -rosterLookbackDays))
	if err != nil {
		return stats, fmt.Errorf("failed to fetch attendant roster: %w", err)
	}
	for _, name := range roster {
		stats.ByAttendant[name] = report.AttendantStats{}
	}

	records, err := s.contacts.ListByScheduledRange(ctx, from, to)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch contacts for report range: %w", err)
	}

	for _, rec := range records {
		name := effectiveAttendant(rec)
		entry := stats.ByAttendant[name] // zero-valued if not in roster

		// The three buckets are independent: a single record can count as a
		// confirmed visit and a sale at the same time.
		if rec.VisitStatus.String != report.VisitStatusCancelled {
			entry.Appointments++
			stats.TotalAppointments++
		}
		if rec.VisitStatus.String == report.VisitStatusConfirmed || tagsContain(rec.Tags, report.TagAttended) {
			entry.Confirmed++
			stats.ConfirmedVisits++
		}
		if tagsContain(rec.Tags, report.TagSaleCompleted) {
			entry.Sales++
			stats.TotalSales++
		}

		stats.ByAttendant[name] = entry
	}

	return stats, nil
}

// effectiveAttendant resolves the attendant a record is credited to: the
// explicit attendant field, then the lead source, then the Instagram handle,
// and finally the unassigned bucket.
func effectiveAttendant(rec contact.Record) string {
	for _, field := range []sql.NullString{rec.Attendant, rec.Source, rec.Instagram} {
		if field.Valid && field.String != "" {
			return field.String
		}
	}
	return report.UnassignedAttendant
}

func tagsContain(tags sql.NullString, marker string) bool {
	return tags.Valid && strings.Contains(tags.String, marker)
}
