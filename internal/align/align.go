package align

import (
	"fmt"

	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Align runs the streaming DTW alignment of learner against reference and
// returns the resulting AlignmentReport. It recomputes against the full
// learner prefix every call; callers wanting incremental behavior must
// implement that at the caller level, since the externally observable
// result must equal a full recomputation regardless. internal/session does
// not: it re-extracts and re-aligns the full learner buffer each tick.
func Align(reference, learner *types.FeatureBundle, weights types.AlignmentWeights) (*types.AlignmentReport, error) {
	if reference.Empty() || learner.Empty() {
		return nil, errs.New(errs.AlignmentFailed, "align.Align", fmt.Errorf("empty feature bundle"))
	}
	if err := checkConsistent(reference); err != nil {
		return nil, errs.New(errs.AlignmentFailed, "align.Align", err)
	}
	if err := checkConsistent(learner); err != nil {
		return nil, errs.New(errs.AlignmentFailed, "align.Align", err)
	}

	forward := runDTW(reference, learner, weights)
	backward := runDTW(learner, reference, weights)

	hopMs := reference.HopMs
	segments := buildSegments(reference, learner, forward.path, hopMs)

	var offsetSum float64
	for _, s := range segments {
		offsetSum += s.TimingDeltaMs
	}
	var globalOffset float64
	if len(segments) > 0 {
		globalOffset = offsetSum / float64(len(segments))
	}

	scale := costScale(weights)
	confidence := 1 - forward.totalCost/(float64(len(forward.path))*scale)
	confidence = clampConfidence(confidence)

	return &types.AlignmentReport{
		Segments:           segments,
		TotalDurationMs:    float64(reference.Frames()) * float64(hopMs),
		ReferencePathCost:  forward.totalCost,
		LearnerPathCost:    backward.totalCost,
		GlobalTimeOffsetMs: globalOffset,
		Confidence:         confidence,
		ReferenceContour:      resampleContour(reference.PitchContour),
		LearnerContour:        resampleContour(learner.PitchContour),
		ReferenceFluxVariance: variance(reference.Flux),
	}, nil
}

func variance(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	var mean float64
	for _, x := range v {
		mean += float64(x)
	}
	mean /= float64(len(v))

	var sum float64
	for _, x := range v {
		d := float64(x) - mean
		sum += d * d
	}
	return sum / float64(len(v))
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func checkConsistent(b *types.FeatureBundle) error {
	f := b.Frames()
	if len(b.Mel) != f || len(b.MFCC) != f || len(b.Deltas) != f || len(b.DeltaDeltas) != f ||
		len(b.Flux) != f || len(b.PitchContour) != f || len(b.Voiced) != f {
		return fmt.Errorf("inconsistent frame counts across feature streams")
	}
	return nil
}
