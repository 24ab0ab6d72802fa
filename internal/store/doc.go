// Package store provides SQLite-backed durable storage for the signal core.
//
// The store implements an append-only log with:
//   - Signals: canonical consensus-log events, deduplicated on provenance
//   - Watermarks: advance-only read cursors, one per (topic, type) source
//   - Recognitions: immutable minted recognition signals
//   - Bindings: the persisted identity-resolution cache
//
// # Critical Patterns
//
// CP-1: Provenance-Level Idempotency
//   - UNIQUE(topic_id, sequence_number) constraint
//   - Redelivered mirror messages are accepted exactly once
//
// CP-2: Advance-Only Watermarks
//   - Upsert uses MAX(existing, new) in a single statement
//   - A watermark never moves backward, even across failed poll cycles
//
// CP-3: Deterministic Query Results
//   - All signal queries include: ORDER BY ts ASC, id ASC COLLATE BINARY
//   - Ensures identical projection inputs for identical store contents
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Accepted signals are never mutated or removed; only new inserts are
// possible, matching the append-only nature of the upstream consensus log.
package store
