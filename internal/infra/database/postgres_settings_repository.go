package database

import (
	"context"
	"database/sql"
	"fmt"

	"mini_painel_worker/internal/domain/settings"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresSettingsRepository implements settings.Store over the shared
// `settings` key-value table that the dashboard also reads and writes.
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", settings.ErrSettingNotFound
		}
		return "", fmt.Errorf("error getting setting %s: %w", key, err)
	}
	return value, nil
}

func (r *PostgresSettingsRepository) Set(ctx context.Context, key string, value string) error {
	query := `INSERT INTO settings (key, value, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error upserting setting %s: %w", key, err)
	}
	return nil
}
