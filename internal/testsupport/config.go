// Package testsupport provides shared helpers for package tests: a config
// builder seeded with per-test temp directories, batch seeding utilities,
// and store constructors.
package testsupport

import (
	"path/filepath"
	"testing"

	"cinelake/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IncomingDir = filepath.Join(base, "incoming")
	cfg.Paths.BronzeDir = filepath.Join(base, "bronze")
	cfg.Paths.LakeDir = filepath.Join(base, "lake")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Sources.ContractsFile = filepath.Join(base, "contracts.yaml")
	cfg.Sources.MappingsFile = filepath.Join(base, "mappings.yaml")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithPrecedence sets the gold provider precedence on the test config.
func WithPrecedence(providers ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gold.ProviderPrecedence = providers
	}
}

// WithQuarantine sets the readiness quarantine window on the test config.
func WithQuarantine(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ingest.QuarantineSeconds = seconds
	}
}
