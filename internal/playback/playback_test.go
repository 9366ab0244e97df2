package playback

import (
	"testing"
	"time"

	"github.com/flowalyzer/pronunciation/internal/types"
)

func TestLogPlayerTracksPlayingState(t *testing.T) {
	player := NewLogPlayer(nil)
	if player.IsPlaying() {
		t.Fatal("expected a fresh player to not be playing")
	}

	clip := &types.RecordedClip{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1, CapturedAt: time.Now()}
	if err := player.Play(clip); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !player.IsPlaying() {
		t.Error("expected the player to report playing after Play")
	}

	if err := player.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if player.IsPlaying() {
		t.Error("expected the player to report stopped after Stop")
	}
}
