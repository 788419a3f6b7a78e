package workflow

import (
	"time"

	"cinelake/internal/batch"
	"cinelake/internal/lake"
	"cinelake/internal/silver"
)

// BatchReport records what happened to one discovered batch.
type BatchReport struct {
	Provider    string
	BatchID     string
	Status      batch.Status
	Outcome     lake.Outcome
	RecordsRead int
	Accepted    int
	Rejected    int
	Duplicates  int
	SkippedRows int
	DriftCount  int
	Error       string
}

// Report is the operator-auditable summary of one pipeline run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Batches []BatchReport
	Drift   []silver.Drift

	Processed  int
	Skipped    int
	Conflicted int
	Failed     int

	RecordsRead int
	Accepted    int
	Rejected    int
	Duplicates  int

	GoldRecords int
}

func (r *Report) add(br BatchReport) {
	r.Batches = append(r.Batches, br)
	switch br.Status {
	case batch.StatusProcessed:
		r.Skipped++
	case batch.StatusConflict:
		r.Conflicted++
	case batch.StatusUnprocessed:
		if br.Error != "" || br.Outcome == lake.OutcomeFailed {
			r.Failed++
		} else {
			r.Processed++
		}
	}
	r.RecordsRead += br.RecordsRead
	r.Accepted += br.Accepted
	r.Rejected += br.Rejected
	r.Duplicates += br.Duplicates
}
