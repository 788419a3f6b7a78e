package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gofrs/flock"

	"cinelake/internal/config"
	"cinelake/internal/contracts"
	"cinelake/internal/lake"
	"cinelake/internal/testsupport"
	"cinelake/internal/workflow"
)

func newManager(t *testing.T, cfg *config.Config, store *lake.Store) *workflow.Manager {
	t.Helper()
	registry, err := contracts.Load(cfg.Sources.ContractsFile, cfg.Sources.MappingsFile)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	manager, err := workflow.New(cfg, store, registry, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrecedence("imdb", "boxofficemetrics"))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)

	testsupport.WriteBatch(t, cfg, "imdb", "2026-03-01", map[string]string{
		"movies.csv": "title,year,rating\nHeat,1995,8.3\nAlien,1979,8.5\n",
	}, true)
	testsupport.WriteBatch(t, cfg, "boxofficemetrics", "2026-03-01", map[string]string{
		"grosses.json": `[{"movie_title":"Heat","release_year":1995,"domestic_gross":67.5,"international_gross":120.25}]`,
	}, true)

	manager := newManager(t, cfg, store)
	report, err := manager.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.RunID == "" {
		t.Fatal("report missing run id")
	}
	if report.Processed != 2 || report.Failed != 0 || report.Conflicted != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.RecordsRead != 3 || report.Accepted != 3 {
		t.Fatalf("records read = %d accepted = %d", report.RecordsRead, report.Accepted)
	}
	if report.GoldRecords != 2 {
		t.Fatalf("gold records = %d, want 2", report.GoldRecords)
	}

	ctx := context.Background()
	count, err := store.CountAudit(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 2 {
		t.Fatalf("audit entries = %d, want 2", count)
	}

	// Heat merges across both providers under imdb precedence.
	gold, err := store.GoldList(ctx, 10)
	if err != nil {
		t.Fatalf("gold list: %v", err)
	}
	var heat *lake.GoldRecord
	for i := range gold {
		if gold[i].Title == "Heat" {
			heat = &gold[i]
		}
	}
	if heat == nil {
		t.Fatalf("Heat missing from gold: %+v", gold)
	}
	if !reflect.DeepEqual(heat.Sources, []string{"boxofficemetrics", "imdb"}) {
		t.Fatalf("heat sources = %v", heat.Sources)
	}
	if heat.Fields["rating"] != 8.3 {
		t.Fatalf("heat rating = %v", heat.Fields["rating"])
	}
	if heat.Fields["total_box_office_gross"] != 187.75 {
		t.Fatalf("heat total gross = %v", heat.Fields["total_box_office_gross"])
	}
}

func TestRunIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrecedence("imdb"))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)
	testsupport.WriteBatch(t, cfg, "imdb", "b1", map[string]string{
		"movies.csv": "title,year\nHeat,1995\n",
	}, true)

	manager := newManager(t, cfg, store)
	ctx := context.Background()
	if _, err := manager.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstGold, err := store.GoldList(ctx, 100)
	if err != nil {
		t.Fatalf("gold list: %v", err)
	}
	firstCount, err := store.CountAudit(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}

	report, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Processed != 0 || report.Skipped != 1 {
		t.Fatalf("second run report = %+v", report)
	}

	secondGold, err := store.GoldList(ctx, 100)
	if err != nil {
		t.Fatalf("gold list: %v", err)
	}
	if !reflect.DeepEqual(firstGold, secondGold) {
		t.Fatalf("gold changed across idempotent runs:\n%+v\n%+v", firstGold, secondGold)
	}
	secondCount, err := store.CountAudit(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if secondCount != firstCount {
		t.Fatalf("audit entries grew from %d to %d", firstCount, secondCount)
	}
}

func TestRunDetectsConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)
	dir := testsupport.WriteBatch(t, cfg, "imdb", "b1", map[string]string{
		"movies.csv": "title,year\nHeat,1995\n",
	}, true)

	manager := newManager(t, cfg, store)
	ctx := context.Background()
	if _, err := manager.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Same batch id, different content.
	if err := os.WriteFile(filepath.Join(dir, "movies.csv"), []byte("title,year\nHeat,1996\n"), 0o644); err != nil {
		t.Fatalf("rewrite batch: %v", err)
	}

	report, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Conflicted != 1 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}

	count, err := store.CountAudit(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 1 {
		t.Fatalf("conflict should not append audit entries, got %d", count)
	}

	// Silver still holds the originally processed data.
	snapshot, err := store.SilverSnapshot(ctx)
	if err != nil {
		t.Fatalf("silver snapshot: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].Year != 1995 {
		t.Fatalf("silver mutated by conflicting batch: %+v", snapshot)
	}
}

func TestRunRecordsPartialFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)
	testsupport.WriteBatch(t, cfg, "imdb", "b1", map[string]string{
		"movies.csv": "title,year\nHeat,1995\nAlien,not-a-year\n",
	}, true)

	manager := newManager(t, cfg, store)
	ctx := context.Background()
	report, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Processed != 1 || report.Rejected != 1 || report.Accepted != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Drift) == 0 {
		t.Fatal("expected drift findings in report")
	}

	entry, err := store.FindAudit(ctx, "imdb", "b1")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if entry.Outcome != lake.OutcomePartialFailure {
		t.Fatalf("ledger outcome = %q, want partial_failure", entry.Outcome)
	}
	if entry.RecordCount != 1 || entry.SkippedRows != 1 {
		t.Fatalf("ledger entry = %+v", entry)
	}
}

func TestRunFailedBatchIsLedgeredAndNotRetried(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)
	testsupport.WriteBatch(t, cfg, "imdb", "b1", map[string]string{
		"movies.jsonl": "garbage\nmore garbage\n",
	}, true)

	manager := newManager(t, cfg, store)
	ctx := context.Background()
	report, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	entry, err := store.FindAudit(ctx, "imdb", "b1")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if entry == nil || entry.Outcome != lake.OutcomeFailed {
		t.Fatalf("ledger entry = %+v", entry)
	}

	second, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Skipped != 1 || second.Failed != 0 {
		t.Fatalf("failed batch should be skipped on replay, report = %+v", second)
	}
}

func TestRunUnknownProviderStaysRetryable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)
	testsupport.WriteBatch(t, cfg, "mysteryprovider", "b1", map[string]string{
		"movies.csv": "title,year\nHeat,1995\n",
	}, true)

	manager := newManager(t, cfg, store)
	ctx := context.Background()
	report, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	entry, err := store.FindAudit(ctx, "mysteryprovider", "b1")
	if err != nil {
		t.Fatalf("find audit: %v", err)
	}
	if entry != nil {
		t.Fatalf("configuration failure should leave no ledger entry, got %+v", entry)
	}

	second, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Failed != 1 {
		t.Fatalf("batch should remain retryable, report = %+v", second)
	}
}

func TestRunRefusesConcurrentInvocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)

	manager := newManager(t, cfg, store)
	other := flock.New(manager.LockPath())
	held, err := other.TryLock()
	if err != nil {
		t.Fatalf("acquire competing lock: %v", err)
	}
	if !held {
		t.Fatal("competing lock not acquired")
	}
	defer func() { _ = other.Unlock() }()

	if _, err := manager.Run(context.Background()); !errors.Is(err, workflow.ErrLocked) {
		t.Fatalf("error = %v, want lock refusal", err)
	}
}

func TestHealthChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrecedence("imdb"))
	testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDefaultSourceDocs(t, cfg)

	for _, check := range workflow.HealthChecks(cfg) {
		if !check.Ready {
			t.Fatalf("check %q unhealthy: %s", check.Name, check.Detail)
		}
	}

	// A missing contracts file must surface as an unhealthy check.
	if err := os.Remove(cfg.Sources.ContractsFile); err != nil {
		t.Fatalf("remove contracts: %v", err)
	}
	healthy := true
	for _, check := range workflow.HealthChecks(cfg) {
		if check.Name == "contracts" && !check.Ready {
			healthy = false
		}
	}
	if healthy {
		t.Fatal("contracts check should fail after source removal")
	}
}
