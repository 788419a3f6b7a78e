package query_test

import (
	"context"
	"errors"
	"testing"

	"cinelake/internal/lake"
	"cinelake/internal/query"
	"cinelake/internal/stage"
	"cinelake/internal/testsupport"
)

func seededEngine(t *testing.T) *query.Engine {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	snapshot := []lake.GoldRecord{
		{MovieKey: "k1", Title: "Alien", Year: 1979, Fields: map[string]any{"rating": 8.5}, Sources: []string{"imdb"}},
		{MovieKey: "k2", Title: "Aliens", Year: 1986, Fields: map[string]any{"rating": 8.4}, Sources: []string{"imdb"}},
		{MovieKey: "k3", Title: "Heat", Year: 1995, Fields: map[string]any{"rating": 8.3}, Sources: []string{"imdb"}},
	}
	if err := store.ReplaceGold(context.Background(), snapshot); err != nil {
		t.Fatalf("seed gold snapshot: %v", err)
	}
	return query.NewEngine(store)
}

func TestByKey(t *testing.T) {
	engine := seededEngine(t)
	record, err := engine.ByKey(context.Background(), "k3")
	if err != nil {
		t.Fatalf("by key: %v", err)
	}
	if record.Title != "Heat" || record.Year != 1995 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestByKeyNotFound(t *testing.T) {
	engine := seededEngine(t)
	_, err := engine.ByKey(context.Background(), "unknown")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !errors.Is(err, stage.ErrNotFound) {
		t.Fatalf("error = %v, want not-found marker", err)
	}
}

func TestByTitleYear(t *testing.T) {
	engine := seededEngine(t)

	records, err := engine.ByTitleYear(context.Background(), "ALIEN", 1979)
	if err != nil {
		t.Fatalf("by title/year: %v", err)
	}
	if len(records) != 1 || records[0].MovieKey != "k1" {
		t.Fatalf("records = %+v", records)
	}

	records, err = engine.ByTitleYear(context.Background(), "Alien", 1986)
	if err != nil {
		t.Fatalf("by title/year: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no match for wrong year, got %+v", records)
	}
}

func TestByTitleSubstring(t *testing.T) {
	engine := seededEngine(t)
	records, err := engine.ByTitle(context.Background(), "alien")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want both Alien films", len(records))
	}
}

func TestList(t *testing.T) {
	engine := seededEngine(t)

	records, err := engine.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].MovieKey != "k1" || records[1].MovieKey != "k2" {
		t.Fatalf("records = %+v", records)
	}

	records, err = engine.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list zero: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("non-positive limit should yield nothing, got %+v", records)
	}
}
