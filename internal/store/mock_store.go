// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject per-operation errors

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
// Each operation can be made to fail by setting the corresponding error field.
type MockStore struct {
	mu       sync.RWMutex
	readings map[int64]*Reading
	nextID   int64
	gen      uint64

	// Error injection - set these to force operations to fail
	SeedErr   error
	AppendErr error
	SelectErr error
	ApplyErr  error
	StatsErr  error
	LatestErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		readings: make(map[int64]*Reading),
		nextID:   1,
	}
}

// Seed replaces all readings and advances the generation.
func (m *MockStore) Seed(ctx context.Context, values []float64) (uint64, error) {
	if m.SeedErr != nil {
		return 0, m.SeedErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.readings = make(map[int64]*Reading, len(values))
	m.nextID = 1
	now := time.Now().UTC()
	for _, v := range values {
		if v < 0 {
			return 0, ErrNegativeValue
		}
		m.readings[m.nextID] = &Reading{
			ID:         m.nextID,
			Generation: m.gen,
			Timestamp:  now,
			Value:      v,
			Validity:   ValidityUnknown,
		}
		m.nextID++
	}
	return m.gen, nil
}

// Append inserts one reading into the current generation.
func (m *MockStore) Append(ctx context.Context, value float64) (int64, error) {
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.readings[id] = &Reading{
		ID:         id,
		Generation: m.gen,
		Timestamp:  time.Now().UTC(),
		Value:      value,
		Validity:   ValidityUnknown,
	}
	return id, nil
}

// SelectUnknown returns all unclassified readings and their generation.
func (m *MockStore) SelectUnknown(ctx context.Context) ([]Reading, uint64, error) {
	if m.SelectErr != nil {
		return nil, 0, m.SelectErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var readings []Reading
	for _, r := range m.readings {
		if r.Validity == ValidityUnknown {
			readings = append(readings, *r)
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].ID < readings[j].ID })
	return readings, m.gen, nil
}

// ApplyLabels applies labels to still-Unknown rows of the matching generation.
func (m *MockStore) ApplyLabels(ctx context.Context, gen uint64, labels map[int64]bool) (int, error) {
	if m.ApplyErr != nil {
		return 0, m.ApplyErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return 0, nil
	}

	applied := 0
	for id, valid := range labels {
		r, ok := m.readings[id]
		if !ok || r.Validity != ValidityUnknown || r.Generation != gen {
			continue
		}
		if valid {
			r.Validity = ValidityValid
		} else {
			r.Validity = ValidityInvalid
		}
		applied++
	}
	return applied, nil
}

// AggregateStats returns counts over the current contents.
func (m *MockStore) AggregateStats(ctx context.Context) (Stats, error) {
	if m.StatsErr != nil {
		return Stats{}, m.StatsErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats Stats
	for _, r := range m.readings {
		stats.Total++
		switch r.Validity {
		case ValidityValid:
			stats.Valid++
		case ValidityInvalid:
			stats.Invalid++
		default:
			stats.Unknown++
		}
	}
	return stats, nil
}

// LatestInvalid returns Invalid readings, newest first, capped at limit.
func (m *MockStore) LatestInvalid(ctx context.Context, limit int) ([]Reading, error) {
	if m.LatestErr != nil {
		return nil, m.LatestErr
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var readings []Reading
	for _, r := range m.readings {
		if r.Validity == ValidityInvalid {
			readings = append(readings, *r)
		}
	}
	sort.Slice(readings, func(i, j int) bool {
		if !readings[i].Timestamp.Equal(readings[j].Timestamp) {
			return readings[i].Timestamp.After(readings[j].Timestamp)
		}
		return readings[i].ID > readings[j].ID
	})
	if len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

// Generation returns the current generation token.
func (m *MockStore) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
