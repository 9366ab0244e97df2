// Package types holds the data model shared across the pronunciation pipeline:
// recorded audio, extracted features, alignment weights and reports, scores,
// and the snapshot/command types that cross the runtime/UI boundary.
package types

import "time"

// SampleRate is the fixed sample rate every clip and feature stream in this
// pipeline is normalized to.
const SampleRate = 16000

// RecordedClip is a mono, 16 kHz, [-1,1]-normalized PCM buffer. Once built it
// is treated as immutable and safe to share across goroutines.
type RecordedClip struct {
	Samples    []float32
	SampleRate int
	Channels   int
	CapturedAt time.Time
}

// Duration returns the clip's length.
func (c *RecordedClip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	seconds := float64(len(c.Samples)) / float64(c.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}
