// Package batch discovers landed provider batches and decides, against
// the audit ledger, which of them still need processing.
package batch

import (
	"context"

	"cinelake/internal/lake"
)

// Status classifies a discovered batch against the audit ledger.
type Status string

const (
	// StatusUnprocessed means the ledger has no entry for the batch.
	StatusUnprocessed Status = "unprocessed"
	// StatusProcessed means the ledger entry matches the batch fingerprint.
	StatusProcessed Status = "processed"
	// StatusConflict means the batch re-landed with different content than
	// the ledger recorded. Conflicts are reported, never auto-reprocessed.
	StatusConflict Status = "conflict"
)

// Landing is one batch directory found in the incoming area. DataFiles
// holds absolute paths sorted by file name; the readiness marker is
// excluded.
type Landing struct {
	Provider  string
	BatchID   string
	Dir       string
	DataFiles []string
}

// Batch is a landing annotated with its content fingerprint and ledger
// status.
type Batch struct {
	Landing
	Fingerprint string
	Status      Status
	// Prior is the ledger entry the status was decided against, nil for
	// unprocessed batches.
	Prior *lake.AuditEntry
}

// Source lists batches that are ready for ingestion.
type Source interface {
	ListReady(ctx context.Context) ([]Landing, error)
}
