// ABOUTME: Unsupervised outlier-detection capability for sensor values
// ABOUTME: Defines the Detector interface and a robust MAD-based implementation

package classify

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyBatch is returned when FitPredict is called with no values
var ErrEmptyBatch = errors.New("empty batch")

// Label is the per-value verdict of a detector.
type Label int

const (
	// LabelInlier marks a value consistent with the batch distribution
	LabelInlier Label = iota
	// LabelOutlier marks a value anomalous within the batch
	LabelOutlier
)

// Detector is the pluggable unsupervised outlier-detection capability.
// FitPredict fits on the given batch and returns one label per value, in
// order, without any assumed fixed contamination rate.
type Detector interface {
	FitPredict(values []float64) ([]Label, error)
}

// DefaultThreshold is the modified z-score cutoff for the MAD detector.
// The Iglewicz-Hoaglin recommendation for flagging outliers.
const DefaultThreshold = 3.5

// MADDetector flags outliers using the modified z-score based on the median
// absolute deviation. The median and MAD are robust to the outliers being
// hunted, unlike the plain mean and standard deviation, so the detector needs
// no contamination parameter.
type MADDetector struct {
	// Threshold is the minimum |modified z-score| to flag as an outlier.
	Threshold float64
}

// NewMADDetector creates a detector with the default threshold.
func NewMADDetector() *MADDetector {
	return &MADDetector{Threshold: DefaultThreshold}
}

// FitPredict labels each value of the batch as inlier or outlier.
func (d *MADDetector) FitPredict(values []float64) ([]Label, error) {
	if len(values) == 0 {
		return nil, ErrEmptyBatch
	}

	med := median(values)
	mad := median(absDeviations(values, med))

	labels := make([]Label, len(values))

	if mad == 0 {
		// Degenerate batch: more than half the values equal the median.
		// Fall back to mean absolute deviation; if that is zero too, the
		// batch is constant and everything is an inlier.
		meanAbs := meanAbsDeviation(values, med)
		if meanAbs == 0 {
			return labels, nil
		}
		for i, v := range values {
			if math.Abs(v-med)/(1.253314*meanAbs) >= d.Threshold {
				labels[i] = LabelOutlier
			}
		}
		return labels, nil
	}

	// Modified z-score: 0.6745 scales MAD to the standard deviation for
	// normally distributed data.
	for i, v := range values {
		if math.Abs(0.6745*(v-med)/mad) >= d.Threshold {
			labels[i] = LabelOutlier
		}
	}
	return labels, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func absDeviations(values []float64, center float64) []float64 {
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - center)
	}
	return devs
}

func meanAbsDeviation(values []float64, center float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v - center)
	}
	return sum / float64(len(values))
}

// Ensure MADDetector implements Detector
var _ Detector = (*MADDetector)(nil)
