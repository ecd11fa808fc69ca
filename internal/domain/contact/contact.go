package contact

import (
	"context"
	"database/sql"
	"time"
)

// Record is the projection of a scheduling contact needed for report
// aggregation. Attendant, Source and Instagram are nullable in the store.
type Record struct {
	Attendant   sql.NullString
	VisitStatus sql.NullString
	Tags        sql.NullString // free-text, comma-joined marker words
	Source      sql.NullString
	Instagram   sql.NullString
}

// Repository defines the read-only queries over scheduling contacts.
type Repository interface {
	// ListAttendantsSince returns the distinct non-null attendant names among
	// contacts scheduled at or after the given instant, sorted ascending.
	ListAttendantsSince(ctx context.Context, since time.Time) ([]string, error)
	// ListByScheduledRange returns the aggregation projection of every contact
	// whose scheduling timestamp falls in [from, to].
	ListByScheduledRange(ctx context.Context, from, to time.Time) ([]Record, error)
}
