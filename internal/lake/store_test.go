package lake_test

import (
	"context"
	"testing"
	"time"

	"cinelake/internal/lake"
	"cinelake/internal/testsupport"
)

func TestAppendAndFindAudit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entry := &lake.AuditEntry{
		RunID:       "run-1",
		Provider:    "imdb",
		BatchID:     "batch-001",
		Fingerprint: "abc123",
		RecordCount: 10,
		SkippedRows: 2,
		Outcome:     lake.OutcomePartialFailure,
		ProcessedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.AppendAudit(ctx, entry); err != nil {
		t.Fatalf("append audit: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected assigned entry id")
	}

	found, err := store.FindAudit(ctx, "imdb", "batch-001")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if found == nil {
		t.Fatal("expected audit entry, got nil")
	}
	if found.Fingerprint != "abc123" || found.RecordCount != 10 || found.SkippedRows != 2 {
		t.Fatalf("unexpected entry: %+v", found)
	}
	if found.Outcome != lake.OutcomePartialFailure {
		t.Fatalf("outcome = %q, want partial_failure", found.Outcome)
	}
	if !found.ProcessedAt.Equal(entry.ProcessedAt) {
		t.Fatalf("processed_at = %v, want %v", found.ProcessedAt, entry.ProcessedAt)
	}
}

func TestFindAuditMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	found, err := store.FindAudit(context.Background(), "imdb", "never-landed")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for unprocessed batch, got %+v", found)
	}
}

func TestFindAuditReturnsLatest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, fp := range []string{"first", "second"} {
		entry := &lake.AuditEntry{
			RunID:       "run-" + fp,
			Provider:    "imdb",
			BatchID:     "batch-001",
			Fingerprint: fp,
			Outcome:     lake.OutcomeSuccess,
		}
		if err := store.AppendAudit(ctx, entry); err != nil {
			t.Fatalf("append audit: %v", err)
		}
	}

	found, err := store.FindAudit(ctx, "imdb", "batch-001")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if found.Fingerprint != "second" {
		t.Fatalf("fingerprint = %q, want latest entry", found.Fingerprint)
	}
}

func TestAppendAuditRejectsBadEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.AppendAudit(ctx, nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
	if err := store.AppendAudit(ctx, &lake.AuditEntry{Provider: "imdb", Outcome: lake.OutcomeSuccess}); err == nil {
		t.Fatal("expected error for missing batch id")
	}
	if err := store.AppendAudit(ctx, &lake.AuditEntry{Provider: "imdb", BatchID: "b", Outcome: "exploded"}); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestListAuditNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, batch := range []string{"a", "b", "c"} {
		entry := &lake.AuditEntry{
			RunID:    "run-1",
			Provider: "imdb",
			BatchID:  batch,
			Outcome:  lake.OutcomeSuccess,
		}
		if err := store.AppendAudit(ctx, entry); err != nil {
			t.Fatalf("append audit: %v", err)
		}
	}

	entries, err := store.ListAudit(ctx, 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].BatchID != "c" || entries[2].BatchID != "a" {
		t.Fatalf("unexpected ordering: %q, %q, %q", entries[0].BatchID, entries[1].BatchID, entries[2].BatchID)
	}

	limited, err := store.ListAudit(ctx, 2)
	if err != nil {
		t.Fatalf("list audit limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d entries, want 2", len(limited))
	}

	count, err := store.CountAudit(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestUpsertSilverLastWriteWins(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := lake.SilverRecord{
		MovieKey:   "k1",
		Provider:   "imdb",
		Title:      "Heat",
		Year:       1995,
		Fields:     map[string]any{"rating": 8.3},
		BatchID:    "batch-2",
		SourceRow:  4,
		IngestedAt: base.Add(time.Hour),
	}
	if err := store.UpsertSilver(ctx, newer); err != nil {
		t.Fatalf("upsert newer: %v", err)
	}

	older := newer
	older.Title = "Stale Heat"
	older.BatchID = "batch-1"
	older.IngestedAt = base
	if err := store.UpsertSilver(ctx, older); err != nil {
		t.Fatalf("upsert older: %v", err)
	}

	snapshot, err := store.SilverSnapshot(ctx)
	if err != nil {
		t.Fatalf("silver snapshot: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("got %d records, want 1", len(snapshot))
	}
	if snapshot[0].Title != "Heat" || snapshot[0].BatchID != "batch-2" {
		t.Fatalf("older record overwrote newer: %+v", snapshot[0])
	}

	// Equal timestamps favour the incoming record so replays converge.
	replay := newer
	replay.Title = "Heat (replayed)"
	if err := store.UpsertSilver(ctx, replay); err != nil {
		t.Fatalf("upsert replay: %v", err)
	}
	snapshot, err = store.SilverSnapshot(ctx)
	if err != nil {
		t.Fatalf("silver snapshot after replay: %v", err)
	}
	if snapshot[0].Title != "Heat (replayed)" {
		t.Fatalf("replay did not overwrite equal-timestamp row: %+v", snapshot[0])
	}
}

func TestSilverSnapshotOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now().UTC()
	records := []lake.SilverRecord{
		{MovieKey: "k2", Provider: "imdb", Title: "B", Year: 2001, IngestedAt: now},
		{MovieKey: "k1", Provider: "zeta", Title: "A", Year: 2000, IngestedAt: now},
		{MovieKey: "k1", Provider: "imdb", Title: "A", Year: 2000, IngestedAt: now},
	}
	for _, record := range records {
		if err := store.UpsertSilver(ctx, record); err != nil {
			t.Fatalf("upsert silver: %v", err)
		}
	}

	snapshot, err := store.SilverSnapshot(ctx)
	if err != nil {
		t.Fatalf("silver snapshot: %v", err)
	}
	if len(snapshot) != 3 {
		t.Fatalf("got %d records, want 3", len(snapshot))
	}
	got := [][2]string{}
	for _, record := range snapshot {
		got = append(got, [2]string{record.MovieKey, record.Provider})
	}
	want := [][2]string{{"k1", "imdb"}, {"k1", "zeta"}, {"k2", "imdb"}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot order = %v, want %v", got, want)
		}
	}
}

func TestReplaceGoldAndQueries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := []lake.GoldRecord{
		{MovieKey: "k1", Title: "Alien", Year: 1979, Fields: map[string]any{"rating": 8.5}, Sources: []string{"imdb"}},
	}
	if err := store.ReplaceGold(ctx, first); err != nil {
		t.Fatalf("replace gold: %v", err)
	}

	second := []lake.GoldRecord{
		{MovieKey: "k2", Title: "Blade Runner", Year: 1982, Fields: map[string]any{"rating": 8.1}, Sources: []string{"imdb", "boxofficemetrics"}},
		{MovieKey: "k3", Title: "Brazil", Year: 1985, Fields: map[string]any{}, Sources: []string{"imdb"}},
	}
	if err := store.ReplaceGold(ctx, second); err != nil {
		t.Fatalf("replace gold again: %v", err)
	}

	// Whole-snapshot replace: the first snapshot is gone entirely.
	stale, err := store.GoldByKey(ctx, "k1")
	if err != nil {
		t.Fatalf("gold by key: %v", err)
	}
	if stale != nil {
		t.Fatalf("expected k1 gone after replace, got %+v", stale)
	}

	record, err := store.GoldByKey(ctx, "k2")
	if err != nil {
		t.Fatalf("gold by key: %v", err)
	}
	if record == nil {
		t.Fatal("expected k2 present")
	}
	if record.Title != "Blade Runner" || record.Year != 1982 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(record.Sources) != 2 || record.Sources[0] != "boxofficemetrics" {
		t.Fatalf("sources not stored sorted: %v", record.Sources)
	}

	byTitle, err := store.GoldByTitleYear(ctx, "blade RUNNER", 1982)
	if err != nil {
		t.Fatalf("gold by title/year: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].MovieKey != "k2" {
		t.Fatalf("title/year lookup = %+v", byTitle)
	}

	bySubstring, err := store.GoldByTitleSubstring(ctx, "b")
	if err != nil {
		t.Fatalf("gold by title substring: %v", err)
	}
	if len(bySubstring) != 2 {
		t.Fatalf("substring lookup returned %d records, want 2", len(bySubstring))
	}

	listed, err := store.GoldList(ctx, 10)
	if err != nil {
		t.Fatalf("gold list: %v", err)
	}
	if len(listed) != 2 || listed[0].MovieKey != "k2" || listed[1].MovieKey != "k3" {
		t.Fatalf("list order = %+v", listed)
	}

	limited, err := store.GoldList(ctx, 1)
	if err != nil {
		t.Fatalf("gold list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].MovieKey != "k2" {
		t.Fatalf("limited list = %+v", limited)
	}
}

func TestParseOutcome(t *testing.T) {
	cases := []struct {
		input string
		want  lake.Outcome
		ok    bool
	}{
		{"success", lake.OutcomeSuccess, true},
		{" Partial_Failure ", lake.OutcomePartialFailure, true},
		{"FAILED", lake.OutcomeFailed, true},
		{"", "", false},
		{"exploded", "", false},
	}
	for _, tc := range cases {
		got, ok := lake.ParseOutcome(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseOutcome(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseOutcome(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
