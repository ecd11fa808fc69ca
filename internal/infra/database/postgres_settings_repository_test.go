package database

import (
	"context"
	"database/sql"
	"testing"

	"mini_painel_worker/internal/domain/settings"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSettingsGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewPostgresSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("mini_painel_webhook_url").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("https://hooks.example/report"))

	value, err := repo.Get(context.Background(), "mini_painel_webhook_url")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "https://hooks.example/report" {
		t.Errorf("Unexpected value: %q", value)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestSettingsGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewPostgresSettingsRepository(db)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "missing")
	if err != settings.ErrSettingNotFound {
		t.Errorf("Expected ErrSettingNotFound, got %v", err)
	}
}

func TestSettingsSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewPostgresSettingsRepository(db)

	mock.ExpectExec(`INSERT INTO settings \(key, value, updated_at\)`).
		WithArgs("last_run_daily", "2025-03-10").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "last_run_daily", "2025-03-10"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
