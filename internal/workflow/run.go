package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cinelake/internal/batch"
	"cinelake/internal/gold"
	"cinelake/internal/lake"
	"cinelake/internal/silver"
	"cinelake/internal/stage"
)

// ErrLocked reports that another pipeline invocation holds the lake lock.
var ErrLocked = errors.New("another pipeline run holds the lake lock")

// Run executes one full pipeline pass. Batch-scoped failures are logged
// and reported; only lock contention, context cancellation, and storage
// failures surface as errors.
func (m *Manager) Run(ctx context.Context) (*Report, error) {
	held, err := m.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lake lock: %w", err)
	}
	if !held {
		return nil, ErrLocked
	}
	defer func() { _ = m.lock.Unlock() }()

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: m.now().UTC(),
	}
	logger := m.logger.With("run_id", report.RunID)
	logger.Info("pipeline run starting", "incoming", m.cfg.Paths.IncomingDir)

	batches, err := batch.Discover(ctx, m.source, m.store, logger)
	if err != nil {
		return nil, err
	}

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.add(m.processBatch(ctx, b, report.RunID, logger, &report.Drift))
	}

	goldCount, err := m.rebuildGold(ctx)
	if err != nil {
		return nil, err
	}
	report.GoldRecords = goldCount
	report.FinishedAt = m.now().UTC()

	logger.Info("pipeline run finished",
		"processed", report.Processed, "skipped", report.Skipped,
		"conflicted", report.Conflicted, "failed", report.Failed,
		"accepted", report.Accepted, "gold_records", report.GoldRecords)
	return report, nil
}

// processBatch runs one batch through bronze and silver. The audit entry
// is appended as the final act: a crash before the append leaves the
// batch retryable, and the silver upserts converge on retry.
func (m *Manager) processBatch(ctx context.Context, b batch.Batch, runID string, logger *slog.Logger, drift *[]silver.Drift) BatchReport {
	br := BatchReport{Provider: b.Provider, BatchID: b.BatchID, Status: b.Status}

	switch b.Status {
	case batch.StatusProcessed:
		logger.Debug("skipping processed batch", "provider", b.Provider, "batch", b.BatchID)
		return br
	case batch.StatusConflict:
		logger.Warn("batch re-landed with different content; leaving untouched",
			"provider", b.Provider, "batch", b.BatchID,
			"recorded_fingerprint", b.Prior.Fingerprint, "current_fingerprint", b.Fingerprint)
		return br
	}

	ingest, err := m.ingestor.Ingest(ctx, b)
	if err != nil {
		logger.Error("bronze ingest failed; batch stays retryable",
			"provider", b.Provider, "batch", b.BatchID, "error", err)
		br.Error = err.Error()
		return br
	}
	br.RecordsRead = len(ingest.Records)
	br.SkippedRows = ingest.SkippedRows
	br.Outcome = ingest.Outcome

	if ingest.Outcome == lake.OutcomeFailed {
		logger.Error("batch failed wholesale",
			"provider", b.Provider, "batch", b.BatchID, "detail", ingest.FailureDetail)
		if err := m.appendAudit(ctx, b, runID, 0, ingest.SkippedRows, lake.OutcomeFailed); err != nil {
			br.Error = err.Error()
		}
		return br
	}

	transformed, err := silver.Transform(ingest.Records, m.registry, m.now().UTC(), logger)
	if err != nil {
		// Typically a provider without a contract. No ledger entry: the
		// batch retries once the configuration is fixed.
		logger.Error("silver transform failed; batch stays retryable",
			"provider", b.Provider, "batch", b.BatchID, "error", err)
		br.Error = err.Error()
		return br
	}
	br.Accepted = len(transformed.Records)
	br.Rejected = transformed.Rejected
	br.Duplicates = transformed.Duplicates
	br.DriftCount = len(transformed.Drift)
	*drift = append(*drift, transformed.Drift...)

	for _, record := range transformed.Records {
		if err := m.store.UpsertSilver(ctx, record); err != nil {
			logger.Error("silver upsert failed; batch stays retryable",
				"provider", b.Provider, "batch", b.BatchID, "error", err)
			br.Error = err.Error()
			return br
		}
	}

	outcome := lake.OutcomeSuccess
	if ingest.SkippedRows > 0 || transformed.Rejected > 0 {
		outcome = lake.OutcomePartialFailure
	}
	br.Outcome = outcome
	if err := m.appendAudit(ctx, b, runID, len(transformed.Records), ingest.SkippedRows+transformed.Rejected, outcome); err != nil {
		br.Error = err.Error()
		return br
	}

	logger.Info("batch processed",
		"provider", b.Provider, "batch", b.BatchID, "outcome", string(outcome),
		"accepted", br.Accepted, "rejected", br.Rejected,
		"duplicates", br.Duplicates, "drift", br.DriftCount)
	return br
}

func (m *Manager) appendAudit(ctx context.Context, b batch.Batch, runID string, recordCount, skipped int, outcome lake.Outcome) error {
	entry := &lake.AuditEntry{
		RunID:       runID,
		Provider:    b.Provider,
		BatchID:     b.BatchID,
		Fingerprint: b.Fingerprint,
		RecordCount: recordCount,
		SkippedRows: skipped,
		Outcome:     outcome,
		ProcessedAt: m.now().UTC(),
	}
	if err := m.store.AppendAudit(ctx, entry); err != nil {
		m.logger.Error("audit append failed",
			"provider", b.Provider, "batch", b.BatchID, "error", err)
		return stage.Wrap(stage.ErrIO, "workflow", "audit append", b.Provider+"/"+b.BatchID, err)
	}
	return nil
}

// rebuildGold regenerates the curated snapshot from the full silver
// snapshot. The rebuild is deterministic, so running it after a no-op
// discovery leaves gold byte-identical.
func (m *Manager) rebuildGold(ctx context.Context) (int, error) {
	snapshot, err := m.store.SilverSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	merged := gold.Aggregate(snapshot, m.cfg.Gold.ProviderPrecedence)
	if err := m.store.ReplaceGold(ctx, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}
