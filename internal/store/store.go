// ABOUTME: Store interface and data types for sensorwatch persistence
// ABOUTME: Defines Reading, Stats and the Store interface for reading storage

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNegativeValue is returned when appending a reading with a negative sensor value
var ErrNegativeValue = errors.New("sensor value must be non-negative")

// Validity is the tri-state classification of a reading.
type Validity int

const (
	// ValidityUnknown means the reading has not been classified yet
	ValidityUnknown Validity = iota
	// ValidityValid means the classifier labeled the reading an inlier
	ValidityValid
	// ValidityInvalid means the classifier labeled the reading an outlier
	ValidityInvalid
)

// String returns the lowercase name of the validity state.
func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Reading represents a single timestamped sensor measurement.
// The store assigns ID and Timestamp at insertion; both are immutable.
// IDs are strictly increasing within a generation and may restart after a reset.
type Reading struct {
	ID         int64
	Generation uint64
	Timestamp  time.Time
	Value      float64
	Validity   Validity
}

// Stats holds aggregate counts over the current generation.
// Valid + Invalid + Unknown always equals Total.
type Stats struct {
	Total   int
	Valid   int
	Invalid int
	Unknown int
}

// Store defines the operations shared by the producer, resetter, classifier
// and query path. Implementations must make Seed atomic with respect to every
// other operation: no caller may observe a half-replaced table or a mix of
// readings from two generations.
type Store interface {
	// Seed replaces the entire contents of the store with the given values,
	// all inserted with Unknown validity, and advances the generation.
	// Returns the new generation token.
	Seed(ctx context.Context, values []float64) (uint64, error)

	// Append inserts one reading into the current generation and returns its ID.
	// Safe to call concurrently with reads and ApplyLabels.
	Append(ctx context.Context, value float64) (int64, error)

	// SelectUnknown returns all readings with Unknown validity together with
	// the generation token they belong to. The batch is a consistent snapshot.
	SelectUnknown(ctx context.Context) ([]Reading, uint64, error)

	// ApplyLabels sets the validity of the given readings (true = valid).
	// Labels are applied only to rows that are still Unknown and still belong
	// to generation gen; a batch from a stale generation is silently dropped.
	// Returns the number of rows actually updated.
	ApplyLabels(ctx context.Context, gen uint64, labels map[int64]bool) (int, error)

	// AggregateStats returns counts over a single consistent snapshot.
	AggregateStats(ctx context.Context) (Stats, error)

	// LatestInvalid returns the most recent Invalid readings, newest first,
	// capped at limit.
	LatestInvalid(ctx context.Context, limit int) ([]Reading, error)

	// Generation returns the current generation token.
	Generation() uint64

	// Close releases any resources held by the store
	Close() error
}
