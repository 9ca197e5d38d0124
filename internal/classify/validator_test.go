// ABOUTME: Tests for the validator actor
// ABOUTME: Covers labeling, skipped cycles, and reset-during-cycle staleness

package classify

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/sensorwatch/internal/simulate"
	"github.com/2389/sensorwatch/internal/store"
)

// stubDetector labels values above the cutoff (or equal to zero) as outliers.
// Deterministic stand-in for the statistical model.
type stubDetector struct {
	cutoff float64
	err    error
	short  bool // return one label too few
}

func (d *stubDetector) FitPredict(values []float64) ([]Label, error) {
	if d.err != nil {
		return nil, d.err
	}
	labels := make([]Label, len(values))
	for i, v := range values {
		if v > d.cutoff || v == 0 {
			labels[i] = LabelOutlier
		}
	}
	if d.short {
		labels = labels[:len(labels)-1]
	}
	return labels, nil
}

func newTestValidator(s store.Store, d Detector) *Validator {
	return NewValidator(s, d, time.Millisecond, slog.Default())
}

func TestValidator_Cycle_EmptyStore(t *testing.T) {
	mock := store.NewMockStore()
	v := newTestValidator(mock, &stubDetector{cutoff: 500})

	require.NoError(t, v.cycle(context.Background()))
}

func TestValidator_Cycle_LabelsReadings(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0, 148.0, 0.0, 152.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{cutoff: 500})
	require.NoError(t, v.cycle(ctx))

	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Valid)
	assert.Equal(t, 2, stats.Invalid)
	assert.Zero(t, stats.Unknown)
}

func TestValidator_Cycle_IdempotentWhenFullyLabeled(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{cutoff: 500})
	require.NoError(t, v.cycle(ctx))

	before, err := mock.AggregateStats(ctx)
	require.NoError(t, err)

	// With no Unknown rows left, a second cycle is a no-op
	require.NoError(t, v.cycle(ctx))

	after, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestValidator_Cycle_OnlyLabelsUnknown(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{cutoff: 500})
	require.NoError(t, v.cycle(ctx))

	// A reading appended after the pass stays Unknown until the next cycle
	_, err = mock.Append(ctx, 0.0)
	require.NoError(t, err)

	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 1, stats.Invalid)

	require.NoError(t, v.cycle(ctx))
	stats, err = mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Unknown)
	assert.Equal(t, 2, stats.Invalid)
}

func TestValidator_Cycle_DetectorError(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{err: errors.New("model blew up")})
	assert.Error(t, v.cycle(ctx))

	// Unclassified rows remain Unknown for the next cycle
	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Unknown)
}

func TestValidator_Cycle_LabelCountMismatch(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{cutoff: 500, short: true})
	assert.Error(t, v.cycle(ctx))
}

func TestValidator_Cycle_StoreErrors(t *testing.T) {
	ctx := context.Background()

	mock := store.NewMockStore()
	mock.SelectErr = errors.New("store unavailable")
	v := newTestValidator(mock, &stubDetector{cutoff: 500})
	assert.Error(t, v.cycle(ctx))

	mock = store.NewMockStore()
	_, err := mock.Seed(ctx, []float64{150.0})
	require.NoError(t, err)
	mock.ApplyErr = errors.New("store unavailable")
	v = newTestValidator(mock, &stubDetector{cutoff: 500})
	assert.Error(t, v.cycle(ctx))
}

func TestValidator_Cycle_ResetMidCycleDropsLabels(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()
	_, err := mock.Seed(ctx, []float64{150.0, 900.0, 0.0})
	require.NoError(t, err)

	v := newTestValidator(mock, &stubDetector{cutoff: 500})

	// Reset lands between the snapshot and the commit
	rng := rand.New(rand.NewPCG(5, 5))
	v.beforeCommit = func() {
		_, err := mock.Seed(ctx, simulate.SeedValues(rng))
		require.NoError(t, err)
	}

	require.NoError(t, v.cycle(ctx))

	// The delayed commit from the old generation changes nothing
	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, simulate.SeedSize, stats.Total)
	assert.Equal(t, simulate.SeedSize, stats.Unknown)
	assert.Zero(t, stats.Valid)
	assert.Zero(t, stats.Invalid)
}

func TestValidator_SeededDataset_EndToEnd(t *testing.T) {
	// Real SQLite store plus the real MAD detector over the canonical seed
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(21, 22))
	_, err = s.Seed(ctx, simulate.SeedValues(rng))
	require.NoError(t, err)

	v := NewValidator(s, NewMADDetector(), time.Minute, slog.Default())
	require.NoError(t, v.cycle(ctx))

	stats, err := s.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, simulate.SeedSize, stats.Total)
	assert.Zero(t, stats.Unknown)
	assert.Equal(t, simulate.SeedSize, stats.Valid+stats.Invalid)
	// At least the 30 injected extremes, allowing minor false positives
	assert.GreaterOrEqual(t, stats.Invalid, 20)

	invalid, err := s.LatestInvalid(ctx, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, invalid)
	assert.LessOrEqual(t, len(invalid), 100)
}

func TestValidator_Run_StopsOnCancel(t *testing.T) {
	mock := store.NewMockStore()
	ctx, cancel := context.WithCancel(context.Background())
	v := newTestValidator(mock, &stubDetector{cutoff: 500})

	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("validator did not stop after cancel")
	}
}
