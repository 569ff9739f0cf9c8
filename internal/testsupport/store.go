package testsupport

import (
	"testing"

	"movieconv/internal/config"
	"movieconv/internal/history"
)

// MustOpenHistory opens the run history database for tests and registers
// cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
