// Package playback defines the reference-clip playback abstraction the
// session runtime starts and stops in lockstep with capture, per spec.md
// §4.5. This tool has no audio output host binding in its dependency
// corpus (out of scope per spec.md §1: "the audio host bindings ... supplies
// PCM frames; drains playback buffers" are external collaborators), so the
// only implementation here is a log-only stand-in that tracks play state
// without touching an output device.
package playback

import (
	"github.com/flowalyzer/pronunciation/internal/logger"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Player starts/stops reference clip playback synchronized with capture
// start. Playback position need not be sample-synchronized with alignment;
// the aligner always treats the reference as its whole feature bundle.
type Player interface {
	Play(clip *types.RecordedClip) error
	Stop() error
	IsPlaying() bool
}

// LogPlayer is the log-only stand-in for a real audio-output host binding.
type LogPlayer struct {
	log     *logger.Logger
	playing bool
}

// NewLogPlayer builds a Player that only logs playback transitions.
func NewLogPlayer(log *logger.Logger) *LogPlayer {
	return &LogPlayer{log: log}
}

func (p *LogPlayer) Play(clip *types.RecordedClip) error {
	p.playing = true
	if p.log != nil {
		p.log.Infof("reference playback started (%s)", clip.Duration())
	}
	return nil
}

func (p *LogPlayer) Stop() error {
	p.playing = false
	if p.log != nil {
		p.log.Infof("reference playback stopped")
	}
	return nil
}

func (p *LogPlayer) IsPlaying() bool {
	return p.playing
}
