package lake

import (
	"strings"
	"time"
)

// Outcome classifies the result of one batch ingest attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialFailure Outcome = "partial_failure"
	OutcomeFailed         Outcome = "failed"
)

var outcomeSet = map[Outcome]struct{}{
	OutcomeSuccess:        {},
	OutcomePartialFailure: {},
	OutcomeFailed:         {},
}

// ParseOutcome converts a string into a known Outcome.
func ParseOutcome(value string) (Outcome, bool) {
	normalized := Outcome(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := outcomeSet[normalized]
	return normalized, ok
}

// AuditEntry is one append-only ledger row. The set of entries keyed by
// (provider, batch_id) is the idempotence ledger the batch locator
// consults; a batch is only considered processed once its entry is
// durably written.
type AuditEntry struct {
	ID          int64
	RunID       string
	Provider    string
	BatchID     string
	Fingerprint string
	RecordCount int
	SkippedRows int
	Outcome     Outcome
	ProcessedAt time.Time
}

// SilverRecord is one normalized record in the silver snapshot.
// At most one row exists per (movie_key, provider); later ingests
// overwrite earlier ones by IngestedAt.
type SilverRecord struct {
	MovieKey   string
	Provider   string
	Title      string
	Year       int
	Fields     map[string]any
	BatchID    string
	SourceRow  int
	IngestedAt time.Time
}

// GoldRecord is one curated row, merged across providers.
type GoldRecord struct {
	MovieKey string
	Title    string
	Year     int
	Fields   map[string]any
	Sources  []string
}
