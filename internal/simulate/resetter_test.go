// ABOUTME: Tests for the resetter actor
// ABOUTME: Covers generation replacement and failure handling

package simulate

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/sensorwatch/internal/store"
)

func newTestResetter(s store.Store) *Resetter {
	rng := rand.New(rand.NewPCG(9, 9))
	return NewResetter(s, time.Millisecond, rng, slog.Default())
}

func TestResetter_Cycle_SeedsFreshGeneration(t *testing.T) {
	mock := store.NewMockStore()
	r := newTestResetter(mock)

	ctx := context.Background()
	require.NoError(t, r.cycle(ctx))
	assert.Equal(t, uint64(1), mock.Generation())

	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedSize, stats.Total)
	assert.Equal(t, SeedSize, stats.Unknown)
	assert.Zero(t, stats.Valid)
	assert.Zero(t, stats.Invalid)
}

func TestResetter_Cycle_ReplacesOldData(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()

	_, err := mock.Seed(ctx, []float64{1, 2, 3})
	require.NoError(t, err)
	_, err = mock.Append(ctx, 150.0)
	require.NoError(t, err)

	r := newTestResetter(mock)
	require.NoError(t, r.cycle(ctx))

	assert.Equal(t, uint64(2), mock.Generation())
	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedSize, stats.Total)
}

func TestResetter_Cycle_FailureKeepsPreviousGeneration(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()

	_, err := mock.Seed(ctx, []float64{1, 2, 3})
	require.NoError(t, err)

	mock.SeedErr = errors.New("disk full")
	r := newTestResetter(mock)
	assert.Error(t, r.cycle(ctx))

	// Previous generation stays until a subsequent successful reset
	mock.SeedErr = nil
	stats, err := mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)

	require.NoError(t, r.cycle(ctx))
	stats, err = mock.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedSize, stats.Total)
}

func TestResetter_Run_StopsOnCancel(t *testing.T) {
	mock := store.NewMockStore()
	r := newTestResetter(mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for mock.Generation() == 0 {
		select {
		case <-deadline:
			t.Fatal("resetter did not seed in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resetter did not stop after cancel")
	}
}
