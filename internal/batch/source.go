package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cinelake/internal/stage"
)

// FSSource discovers batches landed under root as
// <provider>/<batch_id>/ directories.
type FSSource struct {
	root        string
	readyMarker string
	quarantine  time.Duration
	logger      *slog.Logger

	// now is swappable for quarantine tests.
	now func() time.Time
}

// NewFSSource builds a filesystem source. quarantine <= 0 disables the
// markerless-batch fallback.
func NewFSSource(root, readyMarker string, quarantine time.Duration, logger *slog.Logger) *FSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSSource{
		root:        root,
		readyMarker: readyMarker,
		quarantine:  quarantine,
		logger:      logger,
		now:         time.Now,
	}
}

// ListReady walks the incoming area and returns landings that are ready
// for ingestion, ordered by provider then batch id. A batch is ready when
// its marker file is present, or when the quarantine window is enabled and
// no file in the batch has been modified within it. Unreadable provider or
// batch directories are logged and skipped; discovery continues.
func (s *FSSource) ListReady(ctx context.Context) ([]Landing, error) {
	providers, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, stage.Wrap(stage.ErrIO, "batch", "list", "read incoming root", err)
	}

	var landings []Landing
	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !provider.IsDir() {
			continue
		}
		providerName := strings.ToLower(provider.Name())
		providerDir := filepath.Join(s.root, provider.Name())

		batches, err := os.ReadDir(providerDir)
		if err != nil {
			s.logger.Warn("skipping unreadable provider directory",
				"provider", providerName, "error", err)
			continue
		}
		for _, entry := range batches {
			if !entry.IsDir() {
				continue
			}
			landing, ready, err := s.inspect(providerName, filepath.Join(providerDir, entry.Name()), entry.Name())
			if err != nil {
				s.logger.Warn("skipping unreadable batch directory",
					"provider", providerName, "batch", entry.Name(), "error", err)
				continue
			}
			if ready {
				landings = append(landings, landing)
			}
		}
	}

	sort.Slice(landings, func(i, j int) bool {
		if landings[i].Provider != landings[j].Provider {
			return landings[i].Provider < landings[j].Provider
		}
		return landings[i].BatchID < landings[j].BatchID
	})
	return landings, nil
}

func (s *FSSource) inspect(provider, dir, batchID string) (Landing, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Landing{}, false, err
	}

	var (
		dataFiles []string
		marked    bool
		newest    time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == s.readyMarker {
			marked = true
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return Landing{}, false, err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		dataFiles = append(dataFiles, filepath.Join(dir, entry.Name()))
	}

	ready := marked
	if !ready && s.quarantine > 0 && len(dataFiles) > 0 {
		ready = s.now().Sub(newest) >= s.quarantine
	}
	if !ready || len(dataFiles) == 0 {
		return Landing{}, false, nil
	}

	sort.Strings(dataFiles)
	return Landing{
		Provider:  provider,
		BatchID:   batchID,
		Dir:       dir,
		DataFiles: dataFiles,
	}, true, nil
}
