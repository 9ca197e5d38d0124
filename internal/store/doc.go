// Package store provides ephemeral persistence for sensor readings using SQLite.
//
// # Data Model
//
// A Reading is one timestamped sensor measurement with a tri-state validity
// flag: Unknown (unclassified), Valid (inlier) or Invalid (outlier). The
// store assigns IDs at insertion; they are strictly increasing within a
// generation and may restart after a reset.
//
// # Generations
//
// The readings table is replaced wholesale by Seed, never partially deleted.
// Each Seed advances a generation counter. Label write-backs carry the
// generation token of the batch they were computed from; a batch whose
// generation no longer matches the store's is dropped without touching any
// rows. This is what keeps an in-flight classifier pass from corrupting a
// freshly reset dataset.
//
// # Concurrency
//
// Seed is a global barrier: it holds an exclusive lock for the duration of
// the swap. Append, SelectUnknown, ApplyLabels and the query operations hold
// a shared lock, so they interleave freely with each other but never observe
// a half-replaced table.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode and a single pooled connection:
//
//	PRAGMA journal_mode=WAL;
//
// The database is intentionally ephemeral: an existing file is removed at
// startup and rebuilt, and every reset rebuilds the table contents.
// Use ":memory:" for tests.
//
// # Testing
//
// Use NewMockStore() for unit tests; its error fields inject failures per
// operation. Use NewSQLiteStore(":memory:") for integration tests with real
// SQLite.
package store
