// ABOUTME: Producer actor that appends one simulated reading per tick
// ABOUTME: Occasionally injects a synthetic anomaly (spike or flatline)

package simulate

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/2389/sensorwatch/internal/metrics"
	"github.com/2389/sensorwatch/internal/store"
)

// DefaultAnomalyProbability is the chance a produced reading is a synthetic anomaly.
const DefaultAnomalyProbability = 0.05

// Producer generates one reading per tick and appends it to the store.
// A failed append is logged and skipped; the next tick proceeds normally.
type Producer struct {
	store       store.Store
	logger      *slog.Logger
	interval    time.Duration
	anomalyProb float64
	rng         *rand.Rand
}

// NewProducer creates a producer appending to s every interval.
// anomalyProb is the per-tick probability of emitting an anomalous value.
func NewProducer(s store.Store, interval time.Duration, anomalyProb float64, rng *rand.Rand, logger *slog.Logger) *Producer {
	return &Producer{
		store:       s,
		logger:      logger.With("component", "producer"),
		interval:    interval,
		anomalyProb: anomalyProb,
		rng:         rng,
	}
}

// Run produces readings until ctx is canceled. Each tick is independent:
// store errors are reported and the cycle is discarded, never propagated.
func (p *Producer) Run(ctx context.Context) {
	p.logger.Info("producer started", "interval", p.interval, "anomaly_probability", p.anomalyProb)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("producer stopped")
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				metrics.ProducerErrors.Inc()
				p.logger.Error("skipping tick", "error", err)
			}
		}
	}
}

// tick generates and appends a single reading.
func (p *Producer) tick(ctx context.Context) error {
	value, anomaly := p.nextValue()

	id, err := p.store.Append(ctx, value)
	if err != nil {
		return err
	}

	metrics.ReadingsProduced.Inc()
	if anomaly {
		metrics.AnomaliesInjected.Inc()
		p.logger.Warn("injected anomaly", "id", id, "value", value)
	} else {
		p.logger.Debug("appended reading", "id", id, "value", value)
	}
	return nil
}

// nextValue draws the next sensor value. With probability anomalyProb it is
// one of the fixed extreme values, otherwise a clamped normal draw.
func (p *Producer) nextValue() (float64, bool) {
	if p.rng.Float64() < p.anomalyProb {
		if p.rng.IntN(2) == 0 {
			return FlatlineValue, true
		}
		return SpikeValue, true
	}
	return clampZero(p.rng.NormFloat64()*NormalStddev + NormalMean), false
}
