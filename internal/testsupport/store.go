package testsupport

import (
	"context"
	"testing"

	"aura/internal/config"
	"aura/internal/workitems"
)

// MustOpenStore opens a workitems.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *workitems.Store {
	t.Helper()

	store, err := workitems.Open(context.Background(), cfg.Paths.DatabaseFile)
	if err != nil {
		t.Fatalf("workitems.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewInitiative inserts an initiative for tests using the provided store.
func NewInitiative(t testing.TB, store *workitems.Store, item workitems.Initiative) string {
	t.Helper()

	id, err := store.CreateInitiative(context.Background(), item)
	if err != nil {
		t.Fatalf("store.CreateInitiative: %v", err)
	}
	return id
}
