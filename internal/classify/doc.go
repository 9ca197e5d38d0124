// Package classify turns unlabeled readings into Valid/Invalid verdicts.
//
// The Detector interface is the pluggable unsupervised outlier-detection
// capability: fit on a batch of values, return one inlier/outlier label per
// value, no labeled training data and no fixed contamination rate. The
// production implementation is MADDetector, a modified z-score over the
// median absolute deviation; tests inject stub detectors with known outputs.
//
// The Validator is the periodic actor driving classification. Its protocol
// per cycle: snapshot all Unknown readings with their generation token, run
// the detector, map inlier to Valid and outlier to Invalid, and commit via
// the store's generation-checked ApplyLabels. A reset that lands between
// snapshot and commit makes the whole batch stale; the store drops it and
// the validator moves on.
package classify
