// Package score reduces an AlignmentReport into the four headline
// PronunciationScores metrics and per-segment traffic-light bands, following
// the confidence-shaping style of the acoustic fingerprinting service's
// service.go, generalized from its single sigmoid-plus-boost formula to the
// spec's four independent per-dimension formulas.
package score

import (
	"math"

	"github.com/flowalyzer/pronunciation/internal/types"
)

const (
	timingOffsetPenalty    = 0.2
	timingOffsetPenaltyCap = 500.0
	timingToleranceMs      = 300.0
	intonationEnergyBlend  = 0.1
)

// Score reduces report into PronunciationScores, per spec.md §4.3.
func Score(report *types.AlignmentReport) types.PronunciationScores {
	if len(report.Segments) == 0 {
		return types.PronunciationScores{}
	}

	overall := weightedSimilarity(report.Segments) - timingOffsetPenalty*clamp01(math.Abs(report.GlobalTimeOffsetMs)/timingOffsetPenaltyCap)
	timing := 1 - clamp01(meanAbsTimingDelta(report.Segments)/timingToleranceMs)
	articulation := 1 - clamp01(meanArticulationVariance(report.Segments)/refFluxDenominator(report))
	intonation := meanContourSimilarity(report.Segments) + intonationEnergyBlend*meanEnergySimilarity(report.Segments)

	scores := types.PronunciationScores{
		Overall:      clamp01(overall),
		Timing:       clamp01(timing),
		Articulation: clamp01(articulation),
		Intonation:   clamp01(intonation),
		PerSegment:   make([]types.SegmentBands, len(report.Segments)),
	}
	for i, seg := range report.Segments {
		scores.PerSegment[i] = types.SegmentBands{
			Timing:       types.BandFor(1 - clamp01(math.Abs(seg.TimingDeltaMs)/timingToleranceMs)),
			Articulation: types.BandFor(seg.Similarity),
			Intonation:   types.BandFor(seg.ContourSimilarity),
		}
	}
	return scores
}

func weightedSimilarity(segments []types.AlignedSegment) float64 {
	var weightedSum, totalWeight float64
	for _, s := range segments {
		duration := s.ReferenceEndMs - s.ReferenceStartMs
		if duration <= 0 {
			continue
		}
		weightedSum += s.Similarity * duration
		totalWeight += duration
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func meanAbsTimingDelta(segments []types.AlignedSegment) float64 {
	var sum float64
	for _, s := range segments {
		sum += math.Abs(s.TimingDeltaMs)
	}
	return sum / float64(len(segments))
}

func meanArticulationVariance(segments []types.AlignedSegment) float64 {
	var sum float64
	for _, s := range segments {
		sum += s.ArticulationVariance
	}
	return sum / float64(len(segments))
}

func meanContourSimilarity(segments []types.AlignedSegment) float64 {
	var sum float64
	for _, s := range segments {
		sum += s.ContourSimilarity
	}
	return sum / float64(len(segments))
}

func meanEnergySimilarity(segments []types.AlignedSegment) float64 {
	var sum float64
	for _, s := range segments {
		sum += s.EnergySimilarity
	}
	return sum / float64(len(segments))
}

// refFluxDenominator guards against division by zero when the reference
// clip's flux stream is perfectly flat (e.g. silence).
func refFluxDenominator(report *types.AlignmentReport) float64 {
	v := report.ReferenceFluxVariance
	if v <= 0 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
