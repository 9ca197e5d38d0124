// ABOUTME: Resetter actor that periodically replaces the dataset wholesale
// ABOUTME: Seeds a fresh generation; a failed reset keeps the previous data

package simulate

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/2389/sensorwatch/internal/metrics"
	"github.com/2389/sensorwatch/internal/store"
)

// Resetter discards the current generation on a fixed interval and seeds a
// new one. Seeding is atomic in the store; if it fails the previous
// generation stays in place until the next successful reset.
type Resetter struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration
	rng      *rand.Rand
}

// NewResetter creates a resetter reseeding s every interval.
func NewResetter(s store.Store, interval time.Duration, rng *rand.Rand, logger *slog.Logger) *Resetter {
	return &Resetter{
		store:    s,
		logger:   logger.With("component", "resetter"),
		interval: interval,
		rng:      rng,
	}
}

// Run reseeds the store until ctx is canceled. A failed cycle is reported
// and the timer keeps its cadence, so there is no back-to-back retry storm.
func (r *Resetter) Run(ctx context.Context) {
	r.logger.Info("resetter started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("resetter stopped")
			return
		case <-ticker.C:
			if err := r.cycle(ctx); err != nil {
				metrics.Resets.WithLabelValues(metrics.OutcomeError).Inc()
				r.logger.Error("reset failed, keeping previous generation", "error", err)
			}
		}
	}
}

// cycle replaces the dataset with a freshly seeded one.
func (r *Resetter) cycle(ctx context.Context) error {
	gen, err := r.store.Seed(ctx, SeedValues(r.rng))
	if err != nil {
		return err
	}

	metrics.Resets.WithLabelValues(metrics.OutcomeOK).Inc()
	r.logger.Info("reset complete", "generation", gen, "readings", SeedSize)
	return nil
}
