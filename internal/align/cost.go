// Package align implements the streaming multi-stream Dynamic Time Warping
// aligner: a weighted per-frame cost metric over seven feature streams, a
// monotonic DP recurrence with a diagonal-move preference, and a
// tie-break-ordered backtrack that yields a warping path and its
// segment-level diagnostics.
//
// This is grounded on the fingerprinting service's `generator.go` matching
// shape (accumulate-then-rank candidate alignment) generalized from discrete
// hash-bucket voting to a continuous frame-by-frame DP, and on
// katalvlaran/lvlath's `dtw` subpackage purely for the DP-matrix and
// backtrack-with-tie-break structure — its single-stream cost function
// cannot serve this package's seven-term weighted metric, so no code from it
// is imported.
package align

import (
	"math"

	"github.com/flowalyzer/pronunciation/internal/types"
)

// frameCost computes the weighted seven-term distance between reference
// frame i and learner frame j, per spec.md's DTW cost metric.
func frameCost(ref, learner *types.FeatureBundle, w types.AlignmentWeights, i, j int) float64 {
	var d float64
	d += float64(w.MFCC) * l1(ref.MFCC[i], learner.MFCC[j]) / float64(len(ref.MFCC[i]))
	d += float64(w.Delta) * l1(ref.Deltas[i], learner.Deltas[j]) / float64(len(ref.Deltas[i]))
	d += float64(w.DeltaDelta) * l1(ref.DeltaDeltas[i], learner.DeltaDeltas[j]) / float64(len(ref.DeltaDeltas[i]))
	d += float64(w.Mel) * l1(ref.Mel[i], learner.Mel[j]) / float64(len(ref.Mel[i]))
	d += float64(w.Energy) * math.Abs(float64(ref.Energy[i]-learner.Energy[j]))
	d += float64(w.Flux) * math.Abs(float64(ref.Flux[i]-learner.Flux[j]))

	if ref.Voiced[i] && learner.Voiced[j] {
		d += float64(w.Pitch) * math.Abs(float64(ref.PitchContour[i]-learner.PitchContour[j]))
	}
	return d
}

func l1(a, b []float32) float64 {
	var sum float64
	for k := range a {
		diff := float64(a[k]) - float64(b[k])
		if diff < 0 {
			diff = -diff
		}
		sum += diff
	}
	return sum
}

// clipTypicalRange is the worst-case absolute difference between two
// normalized (±8-clipped) feature values on the same stream.
const clipTypicalRange = 16.0

// pitchTypicalRange bounds the pitch term for the confidence denominator: two
// octaves of semitone offset is treated as "no correlation at all" between
// contours.
const pitchTypicalRange = 24.0

// costScale is the per-node cost the confidence formula treats as
// "maximally dissimilar", derived from the weights and the normalization
// ranges above. The factor of two accounts for a mostly-diagonal path, whose
// nodes are scored at 2x the base per-frame cost.
func costScale(w types.AlignmentWeights) float64 {
	clippedSum := float64(w.MFCC + w.Delta + w.DeltaDelta + w.Mel + w.Energy + w.Flux)
	return 2 * (clippedSum*clipTypicalRange + float64(w.Pitch)*pitchTypicalRange)
}
