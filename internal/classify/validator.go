// ABOUTME: Validator actor that periodically classifies unlabeled readings
// ABOUTME: Snapshots Unknown rows, runs the detector, writes labels back

package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/sensorwatch/internal/metrics"
	"github.com/2389/sensorwatch/internal/store"
)

// Validator classifies all currently Unknown readings on a fixed interval
// using an unsupervised Detector over the single feature value.
//
// Each cycle is self-contained: any failure in fetch, fit or write-back is
// logged and the cycle skipped, leaving the rows Unknown for the next cycle.
// A reset interleaving with a cycle is handled by the store's generation
// check: the stale label batch is silently dropped.
type Validator struct {
	store    store.Store
	detector Detector
	logger   *slog.Logger
	interval time.Duration

	// beforeCommit, when set, runs between the snapshot and the write-back.
	// Test hook for interleaving a reset mid-cycle.
	beforeCommit func()
}

// NewValidator creates a validator classifying readings in s every interval.
func NewValidator(s store.Store, d Detector, interval time.Duration, logger *slog.Logger) *Validator {
	return &Validator{
		store:    s,
		detector: d,
		logger:   logger.With("component", "validator"),
		interval: interval,
	}
}

// Run classifies readings until ctx is canceled.
func (v *Validator) Run(ctx context.Context) {
	v.logger.Info("validator started", "interval", v.interval)

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			v.logger.Info("validator stopped")
			return
		case <-ticker.C:
			if err := v.cycle(ctx); err != nil {
				metrics.ClassifierCycles.WithLabelValues(metrics.OutcomeError).Inc()
				v.logger.Error("skipping cycle", "error", err)
			}
		}
	}
}

// cycle runs one classification pass: snapshot, fit+predict, commit.
func (v *Validator) cycle(ctx context.Context) error {
	readings, gen, err := v.store.SelectUnknown(ctx)
	if err != nil {
		return fmt.Errorf("selecting unknown readings: %w", err)
	}
	if len(readings) == 0 {
		metrics.ClassifierCycles.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return nil
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}

	labels, err := v.detector.FitPredict(values)
	if err != nil {
		return fmt.Errorf("running detector: %w", err)
	}
	if len(labels) != len(readings) {
		return fmt.Errorf("detector returned %d labels for %d readings", len(labels), len(readings))
	}

	byID := make(map[int64]bool, len(readings))
	flagged := 0
	for i, r := range readings {
		valid := labels[i] == LabelInlier
		if !valid {
			flagged++
		}
		byID[r.ID] = valid
	}

	if v.beforeCommit != nil {
		v.beforeCommit()
	}

	applied, err := v.store.ApplyLabels(ctx, gen, byID)
	if err != nil {
		return fmt.Errorf("applying labels: %w", err)
	}
	if applied == 0 {
		// Either the generation was reset mid-cycle or every row was
		// labeled by a concurrent pass; both are normal.
		metrics.StaleBatchesDropped.Inc()
		v.logger.Info("label batch dropped", "generation", gen, "labels", len(byID))
		metrics.ClassifierCycles.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil
	}

	metrics.LabelsApplied.Add(float64(applied))
	metrics.ClassifierCycles.WithLabelValues(metrics.OutcomeOK).Inc()
	v.logger.Info("validated readings",
		"generation", gen,
		"validated", applied,
		"flagged", flagged,
	)
	return nil
}
