// ABOUTME: Tests for the seed dataset builder
// ABOUTME: Verifies dataset composition, clamping, and anomaly counts

package simulate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedValues_Composition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values := SeedValues(rng)

	assert.Len(t, values, SeedSize)

	spikes := 0
	flatlines := 0
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0, "seed values must be non-negative")
		switch v {
		case SpikeValue:
			spikes++
		case FlatlineValue:
			flatlines++
		}
	}

	// A clamped normal draw cannot reach the spike value, so the count is exact
	assert.Equal(t, SeedSpikeCount, spikes)
	// Flatlines could in principle gain a clamped draw, but not with this seed
	assert.Equal(t, SeedFlatlineCount, flatlines)
}

func TestSeedValues_NormalRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	values := SeedValues(rng)

	for _, v := range values {
		if v == SpikeValue || v == FlatlineValue {
			continue
		}
		// ~6 sigma bounds around the mean
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, NormalMean+6*NormalStddev)
	}
}

func TestSeedValues_Shuffled(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	values := SeedValues(rng)

	// If the dataset were unshuffled the anomalies would all sit at the tail
	tail := values[SeedNormalCount:]
	anomalies := 0
	for _, v := range tail {
		if v == SpikeValue || v == FlatlineValue {
			anomalies++
		}
	}
	assert.Less(t, anomalies, SeedSpikeCount+SeedFlatlineCount)
}
