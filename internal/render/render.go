// Package render turns a session snapshot into fixed-width terminal text. It
// is a stand-in for the GUI collaborator the runtime otherwise publishes
// snapshots to, so the CLI's session command is drivable end to end without a
// real UI. It deliberately carries no business logic: everything it prints is
// already computed by internal/score and internal/align.
package render

import (
	"fmt"
	"strings"

	"github.com/flowalyzer/pronunciation/internal/types"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"

	barWidth = 30
)

// Frame renders one SessionSnapshot as a multi-line terminal frame: an ASCII
// bar for each of the four headline scores, a colored band letter per
// segment, and the
// latest error line if one is set.
func Frame(snap *types.SessionSnapshot) string {
	if snap == nil {
		return "waiting for the first snapshot...\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tick #%d  latency %.0fms\n", snap.Sequence, snap.LatencyMs)

	if snap.Report == nil {
		fmt.Fprintf(&b, "%s(no alignment yet)%s\n", colorGray, colorReset)
	} else {
		fmt.Fprintf(&b, "overall  %s  %.2f\n", bar(snap.Scores.Overall), snap.Scores.Overall)
		fmt.Fprintf(&b, "timing   %s  %.2f\n", bar(snap.Scores.Timing), snap.Scores.Timing)
		fmt.Fprintf(&b, "artic.   %s  %.2f\n", bar(snap.Scores.Articulation), snap.Scores.Articulation)
		fmt.Fprintf(&b, "intonat. %s  %.2f\n", bar(snap.Scores.Intonation), snap.Scores.Intonation)
		fmt.Fprintf(&b, "segments %s\n", segmentGrid(snap.Scores.PerSegment))
		fmt.Fprintf(&b, "offset   %.0fms  confidence %.2f\n", snap.Report.GlobalTimeOffsetMs, snap.Report.Confidence)
	}

	if snap.Error != "" {
		fmt.Fprintf(&b, "%s! %s%s\n", colorRed, snap.Error, colorReset)
	}
	return b.String()
}

// bar renders a [0,1] score as a fixed-width ASCII progress bar.
func bar(score float64) string {
	filled := int(score * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// segmentGrid renders one colored letter per segment: G(reen)/A(mber)/R(ed)
// for the worst of the segment's three band classifications.
func segmentGrid(segments []types.SegmentBands) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(colorFor(worstBand(seg)) + letterFor(worstBand(seg)) + colorReset)
	}
	if b.Len() == 0 {
		return colorGray + "(none)" + colorReset
	}
	return b.String()
}

func worstBand(seg types.SegmentBands) types.Band {
	worst := seg.Timing
	if seg.Articulation < worst {
		worst = seg.Articulation
	}
	if seg.Intonation < worst {
		worst = seg.Intonation
	}
	return worst
}

func colorFor(b types.Band) string {
	switch b {
	case types.Green:
		return colorGreen
	case types.Amber:
		return colorYellow
	default:
		return colorRed
	}
}

func letterFor(b types.Band) string {
	switch b {
	case types.Green:
		return "G"
	case types.Amber:
		return "A"
	default:
		return "R"
	}
}
