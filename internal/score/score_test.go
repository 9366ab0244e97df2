package score

import (
	"math"
	"testing"

	"github.com/flowalyzer/pronunciation/internal/types"
)

func flatReport(similarity, timingDelta, articulationVar, contourSim, energySim float64, n int) *types.AlignmentReport {
	segments := make([]types.AlignedSegment, n)
	for i := range segments {
		segments[i] = types.AlignedSegment{
			Label:                "#1",
			ReferenceStartMs:     float64(i) * 100,
			ReferenceEndMs:       float64(i+1) * 100,
			TimingDeltaMs:        timingDelta,
			Similarity:           similarity,
			ArticulationVariance: articulationVar,
			ContourSimilarity:    contourSim,
			EnergySimilarity:     energySim,
		}
	}
	return &types.AlignmentReport{Segments: segments, ReferenceFluxVariance: 1}
}

func TestScoreEmptyReport(t *testing.T) {
	scores := Score(&types.AlignmentReport{})
	if scores.Overall != 0 || len(scores.PerSegment) != 0 {
		t.Errorf("expected zero-value scores for an empty report, got %+v", scores)
	}
}

func TestScoreBoundsAreFinite(t *testing.T) {
	report := flatReport(0.9, 5, 0.1, 0.95, 0.8, 4)
	scores := Score(report)
	for _, v := range []float64{scores.Overall, scores.Timing, scores.Articulation, scores.Intonation} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			t.Errorf("expected a finite score in [0,1], got %f", v)
		}
	}
}

func TestScoreIdentityIsHigh(t *testing.T) {
	report := flatReport(1.0, 0, 0, 1.0, 1.0, 8)
	scores := Score(report)
	if scores.Overall < 0.95 {
		t.Errorf("expected near-perfect overall score for identity report, got %f", scores.Overall)
	}
	if scores.Timing != 1 {
		t.Errorf("expected perfect timing score for zero timing delta, got %f", scores.Timing)
	}
}

func TestScorePerSegmentBands(t *testing.T) {
	report := flatReport(0.9, 0, 0, 0.9, 0.9, 1)
	scores := Score(report)
	if len(scores.PerSegment) != 1 {
		t.Fatalf("expected one segment band set, got %d", len(scores.PerSegment))
	}
	if scores.PerSegment[0].Articulation != types.Green {
		t.Errorf("expected Green articulation band for similarity 0.9, got %v", scores.PerSegment[0].Articulation)
	}
}

func TestScoreLargeTimingOffsetPenalizesOverall(t *testing.T) {
	onTime := Score(flatReport(0.9, 0, 0, 0.9, 0.9, 4))
	late := flatReport(0.9, 0, 0, 0.9, 0.9, 4)
	late.GlobalTimeOffsetMs = 500
	lateScores := Score(late)
	if lateScores.Overall >= onTime.Overall {
		t.Errorf("expected a large global time offset to penalize overall score")
	}
}
