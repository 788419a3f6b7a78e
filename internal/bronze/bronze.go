// Package bronze ingests raw batch files. Bronze is schema-agnostic: it
// parses rows into provider-tagged field maps, counts what it cannot
// parse, and persists an immutable raw copy of every batch it touches.
package bronze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cinelake/internal/batch"
	"cinelake/internal/fileutil"
	"cinelake/internal/lake"
	"cinelake/internal/stage"
)

// RawRecord is one parsed row with its lineage. Fields carries string
// values for CSV input and decoded JSON values for JSON input; no typing
// or validation happens at this layer.
type RawRecord struct {
	Provider   string         `json:"provider"`
	BatchID    string         `json:"batch_id"`
	SourceFile string         `json:"source_file"`
	RowIndex   int            `json:"row_index"`
	Fields     map[string]any `json:"fields"`
}

// Result summarizes one batch ingest attempt.
type Result struct {
	Records     []RawRecord
	SkippedRows int
	Outcome     lake.Outcome
	// FailureDetail explains a Failed outcome for the audit trail.
	FailureDetail string
}

// Ingestor parses batch data files and persists bronze copies.
type Ingestor struct {
	bronzeDir string
	logger    *slog.Logger
}

// NewIngestor builds an ingestor writing under bronzeDir.
func NewIngestor(bronzeDir string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{bronzeDir: bronzeDir, logger: logger}
}

// Ingest parses every data file of the batch. Unparsable rows are skipped
// and counted; a wholly unparsable file fails the batch with zero records.
// The error return is reserved for IO failures writing the bronze copy;
// parse trouble is expressed through the outcome.
func (i *Ingestor) Ingest(ctx context.Context, b batch.Batch) (Result, error) {
	var (
		records  []RawRecord
		skipped  int
		rowIndex int
	)

	for _, path := range b.DataFiles {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		fileRecords, fileSkipped, err := i.readFile(b, path, &rowIndex)
		if err != nil {
			i.logger.Error("batch file unparsable",
				"provider", b.Provider, "batch", b.BatchID,
				"file", filepath.Base(path), "error", err)
			return Result{
				SkippedRows:   skipped + fileSkipped,
				Outcome:       lake.OutcomeFailed,
				FailureDetail: fmt.Sprintf("%s: %v", filepath.Base(path), err),
			}, nil
		}
		skipped += fileSkipped
		records = append(records, fileRecords...)
	}

	if err := i.persist(b, records); err != nil {
		return Result{}, err
	}

	outcome := lake.OutcomeSuccess
	if skipped > 0 {
		outcome = lake.OutcomePartialFailure
	}
	return Result{Records: records, SkippedRows: skipped, Outcome: outcome}, nil
}

func (i *Ingestor) readFile(b batch.Batch, path string, rowIndex *int) ([]RawRecord, int, error) {
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		return i.readCSV(b, path, rowIndex)
	case ".json", ".jsonl", ".ndjson":
		return i.readJSON(b, path, rowIndex)
	default:
		i.logger.Warn("ignoring batch file with unsupported extension",
			"provider", b.Provider, "batch", b.BatchID, "file", filepath.Base(path))
		return nil, 0, nil
	}
}

// persist writes the bronze layer for the batch: a verified verbatim copy
// of each source file plus records.jsonl holding the parsed rows.
func (i *Ingestor) persist(b batch.Batch, records []RawRecord) error {
	batchDir := filepath.Join(i.bronzeDir, b.Provider, b.BatchID)
	rawDir := filepath.Join(batchDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return stage.Wrap(stage.ErrIO, "bronze", "persist", "create bronze directory", err)
	}

	for _, src := range b.DataFiles {
		dst := filepath.Join(rawDir, filepath.Base(src))
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return stage.Wrap(stage.ErrIO, "bronze", "persist", "copy raw file", err)
		}
	}

	out, err := os.Create(filepath.Join(batchDir, "records.jsonl"))
	if err != nil {
		return stage.Wrap(stage.ErrIO, "bronze", "persist", "create records file", err)
	}
	defer out.Close()

	encoder := json.NewEncoder(out)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return stage.Wrap(stage.ErrIO, "bronze", "persist", "encode record", err)
		}
	}
	return out.Close()
}
