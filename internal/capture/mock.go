package capture

import (
	"sync"
	"time"

	"github.com/flowalyzer/pronunciation/internal/clock"
	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Mock is a deterministic capture Source for tests: it delivers a preloaded
// PCM buffer in fixed-duration chunks, one chunk per chunkDuration elapsed
// on its injected clock — no dependence on real wall-clock time.
type Mock struct {
	mu sync.Mutex

	samples       []float32
	sampleRate    int
	chunkDuration time.Duration
	chunkSamples  int
	clk           clock.Clock

	cursor     int
	lastPollAt time.Time
	running    bool

	pendingTerminal  error
	pendingTransient error
}

// NewMock builds a Mock that will replay samples (at sampleRate) in
// chunkDuration-sized slices, timed against clk.
func NewMock(samples []float32, sampleRate int, chunkDuration time.Duration, clk clock.Clock) *Mock {
	return &Mock{
		samples:       samples,
		sampleRate:    sampleRate,
		chunkDuration: chunkDuration,
		clk:           clk,
	}
}

func (m *Mock) Start(targetSampleRate, channels int) (types.DeviceInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = true
	m.cursor = 0
	m.lastPollAt = m.clk.Now()
	m.chunkSamples = int(m.chunkDuration.Seconds() * float64(targetSampleRate))
	if m.chunkSamples < 1 {
		m.chunkSamples = 1
	}

	return types.DeviceInfo{
		Name:             "mock",
		NativeSampleRate: m.sampleRate,
		NativeChannels:   channels,
		BufferFrames:     m.chunkSamples,
		ResolvedChunkMs:  int(m.chunkDuration.Milliseconds()),
	}, nil
}

func (m *Mock) Poll() ([]Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil, nil
	}
	if m.pendingTerminal != nil {
		err := m.pendingTerminal
		m.pendingTerminal = nil
		m.running = false
		return nil, errs.New(errs.CaptureTerminal, "capture.Mock.Poll", err)
	}
	if m.pendingTransient != nil {
		err := m.pendingTransient
		m.pendingTransient = nil
		return nil, errs.New(errs.CaptureTransient, "capture.Mock.Poll", err)
	}

	elapsed := m.clk.Now().Sub(m.lastPollAt)
	numChunks := int(elapsed / m.chunkDuration)
	if numChunks <= 0 {
		return nil, nil
	}

	var chunks []Chunk
	for i := 0; i < numChunks && m.cursor < len(m.samples); i++ {
		end := m.cursor + m.chunkSamples
		if end > len(m.samples) {
			end = len(m.samples)
		}
		data := make([]float32, end-m.cursor)
		copy(data, m.samples[m.cursor:end])
		chunks = append(chunks, Chunk{Samples: data, CapturedAt: m.clk.Now()})
		m.cursor = end
		m.lastPollAt = m.lastPollAt.Add(m.chunkDuration)
	}
	return chunks, nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

// InjectTransientError makes the next Poll return err without ending the
// stream, exercising the CaptureTransient error path.
func (m *Mock) InjectTransientError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingTransient = err
}

// InjectTerminalError makes the next Poll return err and stop the source,
// exercising the CaptureTerminal error path.
func (m *Mock) InjectTerminalError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingTerminal = err
}

// Remaining reports how many samples have not yet been delivered, useful in
// tests asserting the mock exhausted its buffer.
func (m *Mock) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples) - m.cursor
}
