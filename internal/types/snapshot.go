package types

import "time"

// SessionSnapshot is an immutable record of session state published from the
// runtime to the UI. Sequence numbers are strictly increasing within a
// session; Report is the most recent successful alignment, nil until the
// first one.
type SessionSnapshot struct {
	Sequence   uint64
	CapturedAt time.Time
	Report     *AlignmentReport
	Scores     PronunciationScores
	LatencyMs  float64
	Error      string
}

// CommandKind enumerates the control messages the UI can send the runtime.
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandStop
	CommandReplayReference
	CommandShutdown
)

func (k CommandKind) String() string {
	switch k {
	case CommandStart:
		return "Start"
	case CommandStop:
		return "Stop"
	case CommandReplayReference:
		return "ReplayReference"
	case CommandShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// SessionCommand is a control message sent from the UI to the runtime.
type SessionCommand struct {
	Kind CommandKind
}
