package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"cinelake/internal/fileutil"
	"cinelake/internal/lake"
)

// Ledger is the slice of the lake store discovery consults.
type Ledger interface {
	FindAudit(ctx context.Context, provider, batchID string) (*lake.AuditEntry, error)
}

// Discover fingerprints each ready landing and classifies it against the
// ledger. Landings whose files cannot be hashed are logged and dropped;
// the rest of the discovery proceeds. Results keep the source's
// (provider, batch id) order.
func Discover(ctx context.Context, source Source, ledger Ledger, logger *slog.Logger) ([]Batch, error) {
	if logger == nil {
		logger = slog.Default()
	}

	landings, err := source.ListReady(ctx)
	if err != nil {
		return nil, err
	}

	batches := make([]Batch, 0, len(landings))
	for _, landing := range landings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fingerprint, err := Fingerprint(landing.DataFiles)
		if err != nil {
			logger.Warn("skipping batch with unreadable data files",
				"provider", landing.Provider, "batch", landing.BatchID, "error", err)
			continue
		}

		prior, err := ledger.FindAudit(ctx, landing.Provider, landing.BatchID)
		if err != nil {
			return nil, fmt.Errorf("consult ledger for %s/%s: %w", landing.Provider, landing.BatchID, err)
		}

		status := StatusUnprocessed
		switch {
		case prior == nil:
		case prior.Fingerprint == fingerprint:
			status = StatusProcessed
		default:
			status = StatusConflict
		}

		batches = append(batches, Batch{
			Landing:     landing,
			Fingerprint: fingerprint,
			Status:      status,
			Prior:       prior,
		})
	}
	return batches, nil
}

// Fingerprint derives a stable content hash for a batch: the SHA-256 of
// each data file's name paired with its own digest, in sorted-name order.
// Renaming, adding, removing, or editing any file changes the result.
func Fingerprint(dataFiles []string) (string, error) {
	sorted := make([]string, len(dataFiles))
	copy(sorted, dataFiles)
	sort.Strings(sorted)

	hasher := sha256.New()
	for _, path := range sorted {
		digest, err := fileutil.HashFile(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(hasher, "%s=%s\n", filepath.Base(path), digest)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
