package app

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"mini_painel_worker/internal/domain/audit"
	"mini_painel_worker/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory settings.Store for tests.
type fakeStore struct {
	values map[string]string
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", settings.ErrSettingNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

// storedLogs decodes the persisted execution log blob, newest first.
func storedLogs(t *testing.T, store *fakeStore) []audit.Entry {
	t.Helper()
	raw, ok := store.values[settings.KeyAutomationLogs]
	if !ok {
		return nil
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		t.Fatalf("Failed to decode stored execution log: %v", err)
	}
	return entries
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
