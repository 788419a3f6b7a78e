package lake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cinelake/internal/config"
)

// Store manages lake persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the lake database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// AppendAudit inserts one ledger entry. Entries are never updated or
// deleted; appending is the final, durable act of processing a batch.
func (s *Store) AppendAudit(ctx context.Context, entry *AuditEntry) error {
	if entry == nil {
		return errors.New("audit entry is nil")
	}
	if entry.Provider == "" || entry.BatchID == "" {
		return errors.New("audit entry requires provider and batch id")
	}
	if _, ok := ParseOutcome(string(entry.Outcome)); !ok {
		return fmt.Errorf("unknown outcome %q", entry.Outcome)
	}
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO audit_entries (
            run_id, provider, batch_id, fingerprint,
            record_count, skipped_rows, outcome, processed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Provider,
		entry.BatchID,
		entry.Fingerprint,
		entry.RecordCount,
		entry.SkippedRows,
		entry.Outcome,
		entry.ProcessedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// FindAudit returns the most recent ledger entry for a batch, or nil when
// the batch was never processed.
func (s *Store) FindAudit(ctx context.Context, provider, batchID string) (*AuditEntry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+auditColumns+` FROM audit_entries
         WHERE provider = ? AND batch_id = ?
         ORDER BY id DESC LIMIT 1`,
		provider, batchID,
	)
	entry, err := scanAuditEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find audit entry: %w", err)
	}
	return entry, nil
}

// ListAudit returns ledger entries, newest first. limit <= 0 returns all.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// CountAudit returns the total number of ledger entries.
func (s *Store) CountAudit(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM audit_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}

// UpsertSilver merges one record into the silver snapshot. The existing
// row survives when it carries a strictly newer IngestedAt (last write
// wins; equal timestamps favour the incoming record so replays converge).
func (s *Store) UpsertSilver(ctx context.Context, record SilverRecord) error {
	if record.MovieKey == "" || record.Provider == "" {
		return errors.New("silver record requires movie key and provider")
	}
	fieldsJSON, err := marshalFields(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal silver fields: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO silver_records (
            movie_key, provider, title, year, fields_json,
            batch_id, source_row, ingested_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (movie_key, provider) DO UPDATE SET
            title = excluded.title,
            year = excluded.year,
            fields_json = excluded.fields_json,
            batch_id = excluded.batch_id,
            source_row = excluded.source_row,
            ingested_at = excluded.ingested_at
        WHERE excluded.ingested_at >= silver_records.ingested_at`,
		record.MovieKey,
		record.Provider,
		record.Title,
		record.Year,
		fieldsJSON,
		record.BatchID,
		record.SourceRow,
		record.IngestedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert silver record: %w", err)
	}
	return nil
}

// SilverSnapshot returns the full silver snapshot ordered by movie key
// then provider, the canonical order the gold aggregation consumes.
func (s *Store) SilverSnapshot(ctx context.Context) ([]SilverRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT movie_key, provider, title, year, fields_json, batch_id, source_row, ingested_at
         FROM silver_records
         ORDER BY movie_key, provider`,
	)
	if err != nil {
		return nil, fmt.Errorf("load silver snapshot: %w", err)
	}
	defer rows.Close()

	var records []SilverRecord
	for rows.Next() {
		var (
			record     SilverRecord
			fieldsJSON string
			ingestedAt int64
		)
		if err := rows.Scan(
			&record.MovieKey, &record.Provider, &record.Title, &record.Year,
			&fieldsJSON, &record.BatchID, &record.SourceRow, &ingestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan silver record: %w", err)
		}
		if record.Fields, err = unmarshalFields(fieldsJSON); err != nil {
			return nil, fmt.Errorf("decode silver fields: %w", err)
		}
		record.IngestedAt = time.Unix(0, ingestedAt).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}

// ReplaceGold swaps the entire gold snapshot inside one transaction.
func (s *Store) ReplaceGold(ctx context.Context, records []GoldRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin gold tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gold_records`); err != nil {
		return fmt.Errorf("clear gold snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO gold_records (movie_key, title, year, fields_json, sources_json)
         VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare gold insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		fieldsJSON, err := marshalFields(record.Fields)
		if err != nil {
			return fmt.Errorf("marshal gold fields: %w", err)
		}
		sourcesJSON, err := marshalSources(record.Sources)
		if err != nil {
			return fmt.Errorf("marshal gold sources: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, record.MovieKey, record.Title, record.Year, fieldsJSON, sourcesJSON); err != nil {
			return fmt.Errorf("insert gold record %q: %w", record.MovieKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gold snapshot: %w", err)
	}
	return nil
}

// GoldByKey fetches one gold record by movie key; nil when absent.
func (s *Store) GoldByKey(ctx context.Context, movieKey string) (*GoldRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+goldColumns+` FROM gold_records WHERE movie_key = ?`,
		movieKey,
	)
	record, err := scanGoldRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gold by key: %w", err)
	}
	return record, nil
}

// GoldByTitleYear fetches gold records matching a title (case-insensitive,
// exact) and year, ordered by movie key.
func (s *Store) GoldByTitleYear(ctx context.Context, title string, year int) ([]GoldRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+goldColumns+` FROM gold_records
         WHERE lower(title) = lower(?) AND year = ?
         ORDER BY movie_key`,
		title, year,
	)
	if err != nil {
		return nil, fmt.Errorf("gold by title/year: %w", err)
	}
	defer rows.Close()
	return collectGoldRecords(rows)
}

// GoldByTitleSubstring fetches gold records whose title contains the given
// text, case-insensitively, ordered by movie key.
func (s *Store) GoldByTitleSubstring(ctx context.Context, title string) ([]GoldRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+goldColumns+` FROM gold_records
         WHERE instr(lower(title), lower(?)) > 0
         ORDER BY movie_key`,
		title,
	)
	if err != nil {
		return nil, fmt.Errorf("gold by title: %w", err)
	}
	defer rows.Close()
	return collectGoldRecords(rows)
}

// GoldList returns up to limit gold records in ascending movie-key order.
func (s *Store) GoldList(ctx context.Context, limit int) ([]GoldRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+goldColumns+` FROM gold_records ORDER BY movie_key LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list gold records: %w", err)
	}
	defer rows.Close()
	return collectGoldRecords(rows)
}
