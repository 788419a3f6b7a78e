package testsupport

import (
	"testing"

	"cinelake/internal/config"
	"cinelake/internal/lake"
)

// MustOpenStore opens the lake store for a test config and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *lake.Store {
	t.Helper()

	store, err := lake.Open(cfg)
	if err != nil {
		t.Fatalf("open lake store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
