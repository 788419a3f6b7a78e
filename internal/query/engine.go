// Package query serves read-only lookups over the current gold snapshot.
package query

import (
	"context"
	"fmt"

	"cinelake/internal/lake"
	"cinelake/internal/stage"
)

// Engine answers lookups against the lake store's gold snapshot.
type Engine struct {
	store *lake.Store
}

// NewEngine builds a query engine over an open lake store.
func NewEngine(store *lake.Store) *Engine {
	return &Engine{store: store}
}

// ByKey returns the gold record for a movie key.
func (e *Engine) ByKey(ctx context.Context, movieKey string) (*lake.GoldRecord, error) {
	record, err := e.store.GoldByKey(ctx, movieKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, stage.Wrap(stage.ErrNotFound, "query", "by key", fmt.Sprintf("movie key %q", movieKey), nil)
	}
	return record, nil
}

// ByTitleYear returns gold records whose title matches case-insensitively
// and whose year matches exactly. No match is an empty slice, not an error.
func (e *Engine) ByTitleYear(ctx context.Context, title string, year int) ([]lake.GoldRecord, error) {
	return e.store.GoldByTitleYear(ctx, title, year)
}

// ByTitle returns gold records whose title contains the given text,
// case-insensitively.
func (e *Engine) ByTitle(ctx context.Context, title string) ([]lake.GoldRecord, error) {
	return e.store.GoldByTitleSubstring(ctx, title)
}

// List returns up to limit gold records in ascending movie-key order.
// A non-positive limit yields an empty slice.
func (e *Engine) List(ctx context.Context, limit int) ([]lake.GoldRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	return e.store.GoldList(ctx, limit)
}
