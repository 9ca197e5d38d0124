// ABOUTME: Tests for the producer actor
// ABOUTME: Covers value generation, append failures, and the run loop

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

func newTestProducer(s store.Store, anomalyProb float64) *Producer {
	rng := rand.New(rand.NewPCG(42, 0))
	return NewProducer(s, time.Millisecond, anomalyProb, rng, slog.Default())
}

func TestProducer_NextValue_AlwaysAnomalous(t *testing.T) {
	p := newTestProducer(store.NewMockStore(), 1.0)

	for i := 0; i < 100; i++ {
		v, anomaly := p.nextValue()
		assert.True(t, anomaly)
		assert.Contains(t, []float64{FlatlineValue, SpikeValue}, v)
	}
}

func TestProducer_NextValue_NeverAnomalous(t *testing.T) {
	p := newTestProducer(store.NewMockStore(), 0.0)

	for i := 0; i < 1000; i++ {
		v, anomaly := p.nextValue()
		assert.False(t, anomaly)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, NormalMean+6*NormalStddev)
	}
}

func TestProducer_Tick_AppendsReading(t *testing.T) {
	mock := store.NewMockStore()
	p := newTestProducer(mock, 0.0)

	require.NoError(t, p.tick(context.Background()))

	stats, err := mock.AggregateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Unknown)
}

func TestProducer_Tick_StoreError(t *testing.T) {
	mock := store.NewMockStore()
	mock.AppendErr = errors.New("store unavailable")
	p := newTestProducer(mock, 0.0)

	err := p.tick(context.Background())
	assert.Error(t, err)
}

func TestProducer_Run_ProducesUntilCanceled(t *testing.T) {
	mock := store.NewMockStore()
	p := newTestProducer(mock, 0.0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Wait until at least one tick landed
	deadline := time.After(2 * time.Second)
	for {
		stats, err := mock.AggregateStats(context.Background())
		require.NoError(t, err)
		if stats.Total > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("producer did not append any reading in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after cancel")
	}
}

func TestProducer_Run_SurvivesStoreErrors(t *testing.T) {
	mock := store.NewMockStore()
	mock.AppendErr = errors.New("store unavailable")
	p := newTestProducer(mock, 0.0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Run must keep scheduling ticks despite every append failing
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after context timeout")
	}
}
