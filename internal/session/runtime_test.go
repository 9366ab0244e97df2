package session

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowalyzer/pronunciation/internal/capture"
	"github.com/flowalyzer/pronunciation/internal/clock"
	"github.com/flowalyzer/pronunciation/internal/history"
	"github.com/flowalyzer/pronunciation/internal/playback"
	"github.com/flowalyzer/pronunciation/internal/types"
)

const testSampleRate = 16000

func sine(freqHz, seconds float64) []float32 {
	n := int(float64(testSampleRate) * seconds)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(testSampleRate)
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}

func referenceClip(seconds float64) *types.RecordedClip {
	return &types.RecordedClip{
		Samples:    sine(220, seconds),
		SampleRate: testSampleRate,
		Channels:   1,
		CapturedAt: time.Unix(0, 0),
	}
}

func equalWeights() types.AlignmentWeights {
	return types.AlignmentWeights{MFCC: 1, Delta: 1, DeltaDelta: 1, Mel: 1, Energy: 1, Flux: 1, Pitch: 1}
}

func newTestRuntime(t *testing.T, learnerSamples []float32, fake *clock.Fake) (*Runtime, *capture.Mock) {
	t.Helper()
	mock := capture.NewMock(learnerSamples, testSampleRate, 50*time.Millisecond, fake)
	rt, err := New(referenceClip(1.0),
		WithCaptureSource(mock),
		WithPlayer(playback.NewLogPlayer(nil)),
		WithClock(fake),
		WithWeights(equalWeights()),
		WithTickInterval(50*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return rt, mock
}

func TestNewRejectsMissingCaptureSource(t *testing.T) {
	if _, err := New(referenceClip(1.0), WithWeights(equalWeights())); err == nil {
		t.Fatal("expected an error when no capture source is configured")
	}
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mock := capture.NewMock(sine(220, 1), testSampleRate, 50*time.Millisecond, fake)
	_, err := New(referenceClip(1.0), WithCaptureSource(mock), WithClock(fake))
	if err == nil {
		t.Fatal("expected an error for the zero-value (all-zero) weights")
	}
}

func TestRuntimeStartsIdleAndRunsToShutdown(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rt, _ := newTestRuntime(t, sine(220, 1.0), fake)
	if rt.State() != Idle {
		t.Fatalf("expected initial state Idle, got %v", rt.State())
	}

	rt.Send(types.SessionCommand{Kind: types.CommandShutdown})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rt.Run(ctx); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if rt.State() != Terminated {
		t.Fatalf("expected Terminated after Shutdown, got %v", rt.State())
	}
}

func TestRuntimePublishesMonotonicSnapshots(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rt, mock := newTestRuntime(t, sine(220, 2.0), fake)

	rt.Send(types.SessionCommand{Kind: types.CommandStart})

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-done
			cancel()
		}()
		rt.Run(ctx)
	}()

	// Drive the fake clock forward enough ticks to exhaust the mock's
	// buffer and accumulate several published snapshots.
	var lastSeq uint64
	for i := 0; i < 40; i++ {
		fake.Advance(50 * time.Millisecond)
		time.Sleep(time.Millisecond)
		snap := rt.Latest()
		if snap == nil {
			continue
		}
		if snap.Sequence < lastSeq {
			t.Fatalf("snapshot sequence went backwards: %d -> %d", lastSeq, snap.Sequence)
		}
		lastSeq = snap.Sequence
	}
	if lastSeq == 0 {
		t.Fatal("expected at least one published snapshot")
	}
	if mock.Remaining() < 0 {
		t.Fatal("mock buffer accounting went negative")
	}

	rt.Send(types.SessionCommand{Kind: types.CommandShutdown})
	time.Sleep(10 * time.Millisecond)
	close(done)
}

func TestRuntimeLatencyOverrunIsAnnotatedNotFatal(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rt, _ := newTestRuntime(t, sine(220, 1.0), fake)
	// The fake clock does not move during a tick, so latency is exactly 0ms;
	// a negative budget guarantees every tick is "over budget".
	rt.cfg.LatencyBudgetMs = -1

	rt.start()
	fake.Advance(50 * time.Millisecond)
	rt.tick(fake.Now())

	snap := rt.Latest()
	if snap == nil {
		t.Fatal("expected a snapshot after one tick")
	}
	if snap.Error == "" {
		t.Error("expected the latency overrun to be annotated on the snapshot")
	}
	if rt.State() != Recording {
		t.Errorf("a latency overrun must not end the session, got state %v", rt.State())
	}
}

func TestRuntimeCaptureTerminalEndsRecording(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rt, mock := newTestRuntime(t, sine(220, 1.0), fake)
	rt.start()

	mock.InjectTerminalError(context.DeadlineExceeded)
	fake.Advance(50 * time.Millisecond)
	rt.tick(fake.Now())

	if rt.State() != Idle {
		t.Errorf("expected a capture-terminal error to return the runtime to Idle, got %v", rt.State())
	}
	snap := rt.Latest()
	if snap == nil || snap.Error == "" {
		t.Error("expected the terminal capture error to be annotated on the snapshot")
	}
}

func TestRuntimeRecordsHistoryOnShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.sqlite3")
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}
	defer store.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	mock := capture.NewMock(sine(220, 1.0), testSampleRate, 50*time.Millisecond, fake)
	rt, err := New(referenceClip(1.0),
		WithCaptureSource(mock),
		WithPlayer(playback.NewLogPlayer(nil)),
		WithClock(fake),
		WithWeights(equalWeights()),
		WithTickInterval(50*time.Millisecond),
		WithHistoryStore(store),
		WithReferencePath("testdata/reference.wav"),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rt.start()
	for i := 0; i < 5; i++ {
		fake.Advance(50 * time.Millisecond)
		rt.tick(fake.Now())
	}
	rt.shutdown()

	rows, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one history row, got %d", len(rows))
	}
	if rows[0].ReferencePath != "testdata/reference.wav" {
		t.Errorf("unexpected reference path: %q", rows[0].ReferencePath)
	}
	if rows[0].SnapshotCount != 5 {
		t.Errorf("expected snapshot_count 5, got %d", rows[0].SnapshotCount)
	}
}

func TestRuntimeShutdownWithNoTicksSkipsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.sqlite3")
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}
	defer store.Close()

	fake := clock.NewFake(time.Unix(0, 0))
	mock := capture.NewMock(sine(220, 1.0), testSampleRate, 50*time.Millisecond, fake)
	rt, err := New(referenceClip(1.0),
		WithCaptureSource(mock),
		WithClock(fake),
		WithWeights(equalWeights()),
		WithHistoryStore(store),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rt.shutdown()

	rows, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no history row for a session that never ticked, got %d", len(rows))
	}
}

func TestRuntimeReplayReferenceOnlyWhileRecording(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rt, _ := newTestRuntime(t, sine(220, 1.0), fake)

	// Replay while Idle is a no-op; the log player should not report playing.
	rt.replayReference()
	player := rt.cfg.Player.(*playback.LogPlayer)
	if player.IsPlaying() {
		t.Error("expected ReplayReference to be a no-op while Idle")
	}

	rt.start()
	rt.replayReference()
	if !player.IsPlaying() {
		t.Error("expected ReplayReference to (re)start playback while Recording")
	}
}
