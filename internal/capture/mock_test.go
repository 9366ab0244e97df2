package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/flowalyzer/pronunciation/internal/clock"
)

func TestMockDeliversChunksOnClockAdvance(t *testing.T) {
	samples := make([]float32, 1600) // 100ms @ 16kHz
	fake := clock.NewFake(time.Unix(0, 0))
	mock := NewMock(samples, 16000, 100*time.Millisecond, fake)

	if _, err := mock.Start(16000, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chunks, err := mock.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks before the clock advances, got %d", len(chunks))
	}

	fake.Advance(100 * time.Millisecond)
	chunks, err = mock.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after one chunk duration, got %d", len(chunks))
	}
	if len(chunks[0].Samples) != 1600 {
		t.Errorf("expected 1600 samples, got %d", len(chunks[0].Samples))
	}
}

func TestMockStopHaltsDelivery(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mock := NewMock(make([]float32, 16000), 16000, 100*time.Millisecond, fake)
	if _, err := mock.Start(16000, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := mock.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	fake.Advance(time.Second)
	chunks, err := mock.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks after Stop, got %d", len(chunks))
	}
}

func TestMockInjectedTerminalError(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mock := NewMock(make([]float32, 16000), 16000, 100*time.Millisecond, fake)
	mock.Start(16000, 1)

	sentinel := errors.New("device disappeared")
	mock.InjectTerminalError(sentinel)
	fake.Advance(200 * time.Millisecond)

	_, err := mock.Poll()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the injected terminal error, got %v", err)
	}
	chunks, err := mock.Poll()
	if err != nil || len(chunks) != 0 {
		t.Errorf("expected the source to be stopped after a terminal error")
	}
}

func TestMicrophoneReportsCaptureTerminal(t *testing.T) {
	mic := NewMicrophone()
	if _, err := mic.Start(16000, 1); err == nil {
		t.Fatal("expected the unwired microphone stub to fail on Start")
	}
}
