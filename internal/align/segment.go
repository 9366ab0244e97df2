package align

import (
	"fmt"
	"math"

	"github.com/flowalyzer/pronunciation/internal/types"
)

// segmentFrameSpan picks the reference-frame span per segment: the smaller
// of a 12-frame window or one eighth of the reference length, never less
// than one frame.
func segmentFrameSpan(refFrames int) int {
	span := refFrames / 8
	if span > 12 {
		span = 12
	}
	if span < 1 {
		span = 1
	}
	return span
}

// buildSegments partitions the warping path into contiguous, equal
// reference-frame-span segments and computes each one's diagnostics.
func buildSegments(ref, learner *types.FeatureBundle, path []point, hopMs int) []types.AlignedSegment {
	refFrames := ref.Frames()
	span := segmentFrameSpan(refFrames)
	numSegments := int(math.Ceil(float64(refFrames) / float64(span)))

	segments := make([]types.AlignedSegment, 0, numSegments)
	pathIdx := 0
	for seg := 0; seg < numSegments; seg++ {
		refStart := seg * span
		refEnd := refStart + span - 1
		if refEnd >= refFrames {
			refEnd = refFrames - 1
		}

		var pairs []point
		for pathIdx < len(path) && path[pathIdx].i <= refEnd {
			if path[pathIdx].i >= refStart {
				pairs = append(pairs, path[pathIdx])
			}
			pathIdx++
		}
		if len(pairs) == 0 {
			continue
		}

		learnerStart := pairs[0].j
		learnerEnd := pairs[len(pairs)-1].j

		referenceStartMs := float64(refStart) * float64(hopMs)
		referenceEndMs := float64(refEnd+1) * float64(hopMs)
		learnerStartMs := float64(learnerStart) * float64(hopMs)
		learnerEndMs := float64(learnerEnd+1) * float64(hopMs)

		refMid := (referenceStartMs + referenceEndMs) / 2
		learnerMid := (learnerStartMs + learnerEndMs) / 2

		segments = append(segments, types.AlignedSegment{
			Label:                fmt.Sprintf("#%d", len(segments)+1),
			ReferenceStartMs:     referenceStartMs,
			ReferenceEndMs:       referenceEndMs,
			LearnerStartMs:       learnerStartMs,
			LearnerEndMs:         learnerEndMs,
			TimingDeltaMs:        learnerMid - refMid,
			Similarity:           segmentSimilarity(ref, learner, pairs),
			ArticulationVariance: segmentArticulationVariance(ref, learner, pairs),
			ContourSimilarity:    segmentContourSimilarity(ref, learner, pairs),
			EnergySimilarity:     segmentEnergySimilarity(ref, learner, pairs),
		})
	}
	return segments
}

func segmentSimilarity(ref, learner *types.FeatureBundle, pairs []point) float64 {
	var sum float64
	for _, p := range pairs {
		sum += l1(ref.MFCC[p.i], learner.MFCC[p.j]) / float64(len(ref.MFCC[p.i]))
	}
	mean := sum / float64(len(pairs))
	return 1 / (1 + mean)
}

func segmentArticulationVariance(ref, learner *types.FeatureBundle, pairs []point) float64 {
	diffs := make([]float64, len(pairs))
	var mean float64
	for k, p := range pairs {
		d := float64(ref.Flux[p.i] - learner.Flux[p.j])
		diffs[k] = d
		mean += d
	}
	mean /= float64(len(diffs))

	var variance float64
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	return variance / float64(len(diffs))
}

func segmentEnergySimilarity(ref, learner *types.FeatureBundle, pairs []point) float64 {
	var sum float64
	for _, p := range pairs {
		d := float64(ref.Energy[p.i] - learner.Energy[p.j])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	mean := sum / float64(len(pairs))
	return 1 / (1 + mean)
}

// contourToleranceSemitones is the "perfect fifth" tolerance spec.md fixes
// for contour-similarity scaling.
const contourToleranceSemitones = 6.0

func segmentContourSimilarity(ref, learner *types.FeatureBundle, pairs []point) float64 {
	var sum float64
	for _, p := range pairs {
		d := float64(ref.PitchContour[p.i] - learner.PitchContour[p.j])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	mean := sum / float64(len(pairs))
	ratio := mean / contourToleranceSemitones
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}
