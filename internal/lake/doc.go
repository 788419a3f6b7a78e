// Package lake manages the pipeline's durable state in a single SQLite
// database: the append-only audit ledger that makes re-runs idempotent,
// the silver snapshot (one row per movie key and provider, merged
// last-write-wins), and the gold snapshot (one row per movie key,
// replaced wholesale on every aggregation).
//
// The ledger is never updated in place and the gold snapshot is only
// replaced inside a single transaction, so a crashed run leaves either
// the previous state or the new one, never a mix.
package lake
