// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides reading persistence with generation-checked label write-back

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	// mu serializes Seed against every other operation. Seed takes the write
	// lock; everything else takes the read lock, so appends, label write-backs
	// and queries interleave freely with each other but never straddle a reset.
	mu sync.RWMutex

	// gen is the current generation token, advanced only by Seed while
	// holding mu exclusively. Readers load it under the read lock, which is
	// what makes the stale-batch check in ApplyLabels race-free.
	gen atomic.Uint64
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The store is intentionally ephemeral: an existing database file at the
// same path is removed and the schema recreated from scratch.
// Parent directories are created if needed. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		if err := os.Remove(path); err == nil {
			logger.Info("removed existing database file", "path", path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing existing database: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps :memory: databases coherent across calls
	// and serializes writers at the driver level.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the readings table if it doesn't exist.
// is_valid is NULL for Unknown, 1 for Valid, 0 for Invalid, matching the
// aggregate queries below. The generation column is what lets a label
// write-back recognize rows from an already-reset dataset.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS readings (
			id           INTEGER PRIMARY KEY,
			generation   INTEGER NOT NULL,
			timestamp    TEXT NOT NULL,
			sensor_value REAL NOT NULL CHECK (sensor_value >= 0),
			is_valid     INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_readings_validity ON readings(is_valid);
		CREATE INDEX IF NOT EXISTS idx_readings_invalid_ts
			ON readings(timestamp DESC) WHERE is_valid = 0;
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Generation returns the current generation token.
func (s *SQLiteStore) Generation() uint64 {
	return s.gen.Load()
}

// Seed replaces all readings with a fresh dataset in a single transaction
// and advances the generation. While Seed holds the write lock no other
// operation can run, so concurrent callers observe either the full old
// generation or the full new one, never a mix.
func (s *SQLiteStore) Seed(ctx context.Context, values []float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.gen.Load() + 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM readings`); err != nil {
		return 0, fmt.Errorf("clearing readings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings (generation, timestamp, sensor_value, is_valid)
		VALUES (?, ?, ?, NULL)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing seed insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, v := range values {
		if v < 0 {
			return 0, ErrNegativeValue
		}
		if _, err := stmt.ExecContext(ctx, next, now, v); err != nil {
			return 0, fmt.Errorf("inserting seed reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	s.gen.Store(next)
	s.logger.Info("seeded new generation", "generation", next, "readings", len(values))
	return next, nil
}

// Append inserts a reading into the current generation and returns its ID.
func (s *SQLiteStore) Append(ctx context.Context, value float64) (int64, error) {
	if value < 0 {
		return 0, ErrNegativeValue
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (generation, timestamp, sensor_value, is_valid)
		VALUES (?, ?, ?, NULL)
	`, s.gen.Load(), time.Now().UTC().Format(time.RFC3339Nano), value)
	if err != nil {
		return 0, fmt.Errorf("inserting reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting reading id: %w", err)
	}

	s.logger.Debug("appended reading", "id", id, "value", value)
	return id, nil
}

// SelectUnknown returns all unclassified readings and the generation they
// belong to. Holding the read lock for the whole query makes the batch a
// consistent snapshot of a single generation.
func (s *SQLiteStore) SelectUnknown(ctx context.Context) ([]Reading, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gen := s.gen.Load()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, sensor_value
		FROM readings
		WHERE is_valid IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("querying unknown readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		r := Reading{Generation: gen, Validity: ValidityUnknown}
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Value); err != nil {
			return nil, 0, fmt.Errorf("scanning reading row: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing timestamp: %w", err)
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating reading rows: %w", err)
	}

	return readings, gen, nil
}

// ApplyLabels writes back classifier labels for the given generation.
// A batch whose generation no longer matches the store's current generation
// is dropped wholesale: the rows it refers to were replaced by a reset and
// their IDs may have been reused by the new dataset. Individual rows that
// were labeled in the meantime are skipped by the is_valid IS NULL guard.
func (s *SQLiteStore) ApplyLabels(ctx context.Context, gen uint64, labels map[int64]bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if gen != s.gen.Load() {
		s.logger.Debug("dropping stale label batch",
			"batch_generation", gen,
			"current_generation", s.gen.Load(),
			"labels", len(labels),
		)
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning label transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE readings
		SET is_valid = ?
		WHERE id = ? AND is_valid IS NULL AND generation = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing label update: %w", err)
	}
	defer stmt.Close()

	applied := 0
	for id, valid := range labels {
		validInt := 0
		if valid {
			validInt = 1
		}
		result, err := stmt.ExecContext(ctx, validInt, id, gen)
		if err != nil {
			return 0, fmt.Errorf("updating reading %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("getting rows affected: %w", err)
		}
		applied += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing labels: %w", err)
	}

	s.logger.Debug("applied labels", "generation", gen, "applied", applied)
	return applied, nil
}

// AggregateStats returns counts over a single consistent snapshot.
// Absent sums are normalized to zero so the counts always add up.
func (s *SQLiteStore) AggregateStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_valid = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_valid = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_valid IS NULL THEN 1 ELSE 0 END), 0)
		FROM readings
	`).Scan(&stats.Total, &stats.Valid, &stats.Invalid, &stats.Unknown)
	if err != nil {
		return Stats{}, fmt.Errorf("querying aggregate stats: %w", err)
	}

	return stats, nil
}

// LatestInvalid returns the most recent Invalid readings, newest first.
// If limit is 0 or negative, a default limit of 100 is used.
func (s *SQLiteStore) LatestInvalid(ctx context.Context, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 100 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	gen := s.gen.Load()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, sensor_value
		FROM readings
		WHERE is_valid = 0
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying invalid readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		r := Reading{Generation: gen, Validity: ValidityInvalid}
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning invalid reading: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invalid rows: %w", err)
	}

	return readings, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
