package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mini_painel_worker/internal/domain/contact"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresContactRepository implements contact.Repository over the `contacts`
// table. The worker only reads from it; all writes happen in the dashboard.
type PostgresContactRepository struct {
	db *sql.DB
}

func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{db: db}
}

func (r *PostgresContactRepository) ListAttendantsSince(ctx context.Context, since time.Time) ([]string, error) {
	query := `SELECT DISTINCT attendant FROM contacts
               WHERE scheduled_at >= $1 AND attendant IS NOT NULL
               ORDER BY attendant`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("error listing attendants: %w", err)
	}
	defer rows.Close()

	attendants := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning attendant: %w", err)
		}
		attendants = append(attendants, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendants: %w", err)
	}
	return attendants, nil
}

func (r *PostgresContactRepository) ListByScheduledRange(ctx context.Context, from, to time.Time) ([]contact.Record, error) {
	query := `SELECT attendant, visit_status, tags, source, instagram
               FROM contacts
               WHERE scheduled_at >= $1 AND scheduled_at <= $2`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts by range: %w", err)
	}
	defer rows.Close()

	records := make([]contact.Record, 0)
	for rows.Next() {
		var rec contact.Record
		if err := rows.Scan(&rec.Attendant, &rec.VisitStatus, &rec.Tags, &rec.Source, &rec.Instagram); err != nil {
			return nil, fmt.Errorf("error scanning contact: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return records, nil
}
