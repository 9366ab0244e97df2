package render

import (
	"strings"
	"testing"

	"github.com/flowalyzer/pronunciation/internal/types"
)

func TestFrameHandlesNilSnapshot(t *testing.T) {
	out := Frame(nil)
	if out == "" {
		t.Fatal("expected a placeholder frame for a nil snapshot")
	}
}

func TestFrameHandlesMissingReport(t *testing.T) {
	out := Frame(&types.SessionSnapshot{Sequence: 1})
	if !strings.Contains(out, "no alignment yet") {
		t.Errorf("expected a no-alignment placeholder, got:\n%s", out)
	}
}

func TestFrameRendersScoresAndError(t *testing.T) {
	snap := &types.SessionSnapshot{
		Sequence: 42,
		Report: &types.AlignmentReport{
			GlobalTimeOffsetMs: 12,
			Confidence:         0.9,
		},
		Scores: types.PronunciationScores{
			Overall: 0.75, Timing: 0.6, Articulation: 0.9, Intonation: 0.5,
			PerSegment: []types.SegmentBands{
				{Timing: types.Green, Articulation: types.Green, Intonation: types.Green},
				{Timing: types.Red, Articulation: types.Green, Intonation: types.Amber},
			},
		},
		Error: "tick took 210ms",
	}
	out := Frame(snap)
	if !strings.Contains(out, "42") {
		t.Error("expected the sequence number in the frame")
	}
	if !strings.Contains(out, "tick took 210ms") {
		t.Error("expected the error line in the frame")
	}
	if !strings.Contains(out, "G") || !strings.Contains(out, "R") {
		t.Error("expected both a Green and a Red segment letter")
	}
}

func TestBarClampsToRange(t *testing.T) {
	if got := bar(-1); len(got) != barWidth+2 {
		t.Errorf("bar(-1) should still be fixed width, got %q", got)
	}
	if got := bar(2); len(got) != barWidth+2 {
		t.Errorf("bar(2) should still be fixed width, got %q", got)
	}
}
