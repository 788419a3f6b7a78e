// Package workflow orchestrates a full pipeline run: discover ready
// batches, ingest and transform the new ones, checkpoint each in the audit
// ledger, then rebuild the gold snapshot.
package workflow

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"cinelake/internal/batch"
	"cinelake/internal/bronze"
	"cinelake/internal/config"
	"cinelake/internal/contracts"
	"cinelake/internal/lake"
)

// Manager owns the collaborators of a pipeline run and enforces
// single-instance execution through a lake lock.
type Manager struct {
	cfg      *config.Config
	store    *lake.Store
	registry *contracts.Registry
	source   batch.Source
	ingestor *bronze.Ingestor
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock

	now func() time.Time
}

// New constructs a manager with initialized dependencies.
func New(cfg *config.Config, store *lake.Store, registry *contracts.Registry, logger *slog.Logger) (*Manager, error) {
	if cfg == nil || store == nil || registry == nil {
		return nil, errors.New("workflow requires config, store, and registry")
	}
	if logger == nil {
		logger = slog.Default()
	}

	quarantine := time.Duration(cfg.Ingest.QuarantineSeconds) * time.Second
	lockPath := filepath.Join(cfg.Paths.LakeDir, "cinelake.lock")
	return &Manager{
		cfg:      cfg,
		store:    store,
		registry: registry,
		source:   batch.NewFSSource(cfg.Paths.IncomingDir, cfg.Ingest.ReadyMarker, quarantine, logger),
		ingestor: bronze.NewIngestor(cfg.Paths.BronzeDir, logger),
		logger:   logger,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		now:      time.Now,
	}, nil
}

// LockPath returns the location of the run lock file.
func (m *Manager) LockPath() string {
	return m.lockPath
}
