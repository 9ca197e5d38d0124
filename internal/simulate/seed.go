// ABOUTME: Seed dataset builder for fresh generations
// ABOUTME: Produces the normal-distributed baseline plus the fixed anomaly batch

package simulate

import "math/rand/v2"

// Distribution parameters shared by the seed dataset and the producer.
const (
	// NormalMean is the mean of the simulated sensor distribution.
	NormalMean = 150.0
	// NormalStddev is the standard deviation of the simulated distribution.
	NormalStddev = 25.0
	// SpikeValue is the high-spike anomaly reading.
	SpikeValue = 900.0
	// FlatlineValue is the flatline anomaly reading.
	FlatlineValue = 0.0
)

// Seed dataset composition: 1000 normal readings plus 15 spikes and 15 flatlines.
const (
	SeedNormalCount   = 1000
	SeedSpikeCount    = 15
	SeedFlatlineCount = 15
)

// SeedSize is the total number of readings in a freshly seeded generation.
const SeedSize = SeedNormalCount + SeedSpikeCount + SeedFlatlineCount

// SeedValues builds the dataset for a fresh generation: SeedNormalCount values
// drawn from N(NormalMean, NormalStddev) clamped at zero, plus the fixed
// anomaly batch, shuffled into arbitrary order.
func SeedValues(rng *rand.Rand) []float64 {
	values := make([]float64, 0, SeedSize)
	for i := 0; i < SeedNormalCount; i++ {
		values = append(values, clampZero(rng.NormFloat64()*NormalStddev+NormalMean))
	}
	for i := 0; i < SeedSpikeCount; i++ {
		values = append(values, SpikeValue)
	}
	for i := 0; i < SeedFlatlineCount; i++ {
		values = append(values, FlatlineValue)
	}
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return values
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
