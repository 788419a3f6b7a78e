package lake

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const auditColumns = `id, run_id, provider, batch_id, fingerprint, record_count, skipped_rows, outcome, processed_at`

const goldColumns = `movie_key, title, year, fields_json, sources_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditEntry(row rowScanner) (*AuditEntry, error) {
	var (
		entry       AuditEntry
		outcome     string
		processedAt string
	)
	if err := row.Scan(
		&entry.ID, &entry.RunID, &entry.Provider, &entry.BatchID, &entry.Fingerprint,
		&entry.RecordCount, &entry.SkippedRows, &outcome, &processedAt,
	); err != nil {
		return nil, err
	}

	parsed, ok := ParseOutcome(outcome)
	if !ok {
		return nil, fmt.Errorf("unknown outcome %q in ledger", outcome)
	}
	entry.Outcome = parsed

	ts, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return nil, fmt.Errorf("parse processed_at: %w", err)
	}
	entry.ProcessedAt = ts
	return &entry, nil
}

func scanGoldRecord(row rowScanner) (*GoldRecord, error) {
	var (
		record      GoldRecord
		fieldsJSON  string
		sourcesJSON string
	)
	if err := row.Scan(&record.MovieKey, &record.Title, &record.Year, &fieldsJSON, &sourcesJSON); err != nil {
		return nil, err
	}

	fields, err := unmarshalFields(fieldsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode gold fields: %w", err)
	}
	record.Fields = fields

	if err := json.Unmarshal([]byte(sourcesJSON), &record.Sources); err != nil {
		return nil, fmt.Errorf("decode gold sources: %w", err)
	}
	return &record, nil
}

func collectGoldRecords(rows *sql.Rows) ([]GoldRecord, error) {
	var records []GoldRecord
	for rows.Next() {
		record, err := scanGoldRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gold record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func marshalFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalFields(data string) (map[string]any, error) {
	fields := map[string]any{}
	if data == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func marshalSources(sources []string) (string, error) {
	if sources == nil {
		sources = []string{}
	}
	sorted := make([]string, len(sources))
	copy(sorted, sources)
	sort.Strings(sorted)
	data, err := json.Marshal(sorted)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
