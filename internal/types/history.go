package types

import "time"

// HistoryEntry is the aggregate-only record the Practice History Store
// persists on session Shutdown. It never carries PCM samples or feature
// data, honoring the "no persisted session recordings" non-goal — only the
// final scores survive the session.
type HistoryEntry struct {
	SessionID     string
	ReferencePath string
	StartedAt     time.Time
	EndedAt       time.Time
	FinalScores   PronunciationScores
	SnapshotCount int
}
