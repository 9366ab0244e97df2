// Package session implements the runtime orchestrator: the state machine and
// per-tick loop that drains captured audio, re-extracts features, aligns
// against a reference clip, scores the alignment, and publishes an immutable
// snapshot for a UI to read. It is grounded on the acoustic fingerprinting
// service's Config/Option construction and interface-injected collaborators
// (pkg/acousticdna/service.go, interfaces.go), generalized from a single
// Storage/Logger pair to the session's full dependency set: capture source,
// reference player, clock, and history store.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowalyzer/pronunciation/internal/align"
	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/features"
	"github.com/flowalyzer/pronunciation/internal/score"
	"github.com/flowalyzer/pronunciation/internal/types"
	"github.com/flowalyzer/pronunciation/internal/uuid"
)

// State is one of the runtime's three lifecycle states.
type State int

const (
	Idle State = iota
	Recording
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// commandQueueSize bounds the non-blocking control channel; commands are
// drained at tick boundaries only, never mid-tick.
const commandQueueSize = 8

// Runtime drives one practice session end to end. It is safe for one
// goroutine to call Run while any number of goroutines call Send and Latest.
type Runtime struct {
	cfg *Config

	referenceClip     *types.RecordedClip
	referenceFeatures *types.FeatureBundle

	sessionID string
	startedAt time.Time

	mu             sync.Mutex
	state          State
	learnerPCM     []float32
	learnerFeat    *types.FeatureBundle
	lastExtractLen int
	lastReport     *types.AlignmentReport
	lastScores     types.PronunciationScores
	snapshotCount  int

	commands chan types.SessionCommand
	sequence uint64
	latest   atomic.Pointer[types.SessionSnapshot]
}

// New builds a Runtime for the given reference clip, extracting its feature
// bundle once up front. The reference's features never change over the
// session's lifetime.
func New(reference *types.RecordedClip, opts ...Option) (*Runtime, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.CaptureSource == nil {
		return nil, errs.New(errs.ConfigInvalid, "session.New", errNoCaptureSource)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, errs.New(errs.ConfigInvalid, "session.New", err)
	}

	refFeatures, err := features.Extract(reference.Samples, reference.SampleRate)
	if err != nil {
		return nil, errs.New(errs.ReferenceUnavailable, "session.New", err)
	}

	return &Runtime{
		cfg:               cfg,
		referenceClip:     reference,
		referenceFeatures: refFeatures,
		sessionID:         uuid.New(),
		state:             Idle,
		commands:          make(chan types.SessionCommand, commandQueueSize),
	}, nil
}

// Send enqueues a control command. It never blocks; a full queue drops the
// command, and Send does not report the drop to the caller.
func (r *Runtime) Send(cmd types.SessionCommand) {
	select {
	case r.commands <- cmd:
	default:
	}
}

// Latest returns the most recently published snapshot, or nil before the
// first tick.
func (r *Runtime) Latest() *types.SessionSnapshot {
	return r.latest.Load()
}

// State reports the runtime's current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run drives the state machine until a Shutdown command is processed or ctx
// is canceled, whichever comes first. It is the runtime's single owning
// goroutine: capture, feature extraction, alignment and scoring all happen
// inline on this goroutine so that a tick is never interleaved with another.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		if r.drainCommands(ctx) {
			return nil
		}
		if r.State() == Terminated {
			return nil
		}

		if r.State() != Recording {
			select {
			case <-ctx.Done():
				return nil
			case cmd := <-r.commands:
				if r.handleCommand(cmd) {
					return nil
				}
			}
			continue
		}

		tickStart := r.cfg.Clock.Now()
		r.tick(tickStart)
		elapsed := r.cfg.Clock.Now().Sub(tickStart)
		if remaining := r.cfg.TickInterval - elapsed; remaining > 0 {
			r.cfg.Clock.Sleep(remaining)
		}
	}
}

// drainCommands processes every command currently queued without blocking.
// It reports whether the runtime has terminated.
func (r *Runtime) drainCommands(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return true
		case cmd := <-r.commands:
			if r.handleCommand(cmd) {
				return true
			}
		default:
			return false
		}
	}
}

func (r *Runtime) handleCommand(cmd types.SessionCommand) (terminated bool) {
	switch cmd.Kind {
	case types.CommandStart:
		r.start()
	case types.CommandStop:
		r.stop()
	case types.CommandReplayReference:
		r.replayReference()
	case types.CommandShutdown:
		r.shutdown()
		return true
	}
	return false
}

func (r *Runtime) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Idle {
		return
	}
	if _, err := r.cfg.CaptureSource.Start(types.SampleRate, 1); err != nil {
		r.cfg.Log.Errorf("session %s: capture start failed: %v", r.sessionID, err)
		return
	}
	if err := r.cfg.Player.Play(r.referenceClip); err != nil {
		r.cfg.Log.Warnf("session %s: reference playback failed to start: %v", r.sessionID, err)
	}
	r.learnerPCM = nil
	r.learnerFeat = nil
	r.lastExtractLen = 0
	r.lastReport = nil
	r.lastScores = types.PronunciationScores{}
	r.snapshotCount = 0
	r.startedAt = r.cfg.Clock.Now()
	r.state = Recording
}

func (r *Runtime) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return
	}
	if err := r.cfg.CaptureSource.Stop(); err != nil {
		r.cfg.Log.Warnf("session %s: capture stop failed: %v", r.sessionID, err)
	}
	if err := r.cfg.Player.Stop(); err != nil {
		r.cfg.Log.Warnf("session %s: player stop failed: %v", r.sessionID, err)
	}
	r.state = Idle
}

func (r *Runtime) replayReference() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return
	}
	_ = r.cfg.Player.Stop()
	if err := r.cfg.Player.Play(r.referenceClip); err != nil {
		r.cfg.Log.Warnf("session %s: reference replay failed: %v", r.sessionID, err)
	}
}

func (r *Runtime) shutdown() {
	r.mu.Lock()
	wasRecording := r.state == Recording
	r.state = Terminated
	entry := types.HistoryEntry{
		SessionID:     r.sessionID,
		ReferencePath: r.cfg.ReferencePath,
		StartedAt:     r.startedAt,
		EndedAt:       r.cfg.Clock.Now(),
		FinalScores:   r.lastScores,
		SnapshotCount: r.snapshotCount,
	}
	hasHistory := r.snapshotCount > 0
	r.mu.Unlock()

	if wasRecording {
		_ = r.cfg.CaptureSource.Stop()
		_ = r.cfg.Player.Stop()
	}
	if r.cfg.History != nil && hasHistory {
		if err := r.cfg.History.Record(entry); err != nil {
			r.cfg.Log.Errorf("session %s: recording history failed: %v", r.sessionID, err)
		}
	}
}

// tick runs one iteration of the per-tick loop described in spec.md §4.4:
// drain capture, append PCM, maybe re-extract features, align, score,
// measure latency, publish a snapshot.
func (r *Runtime) tick(tickStart time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tickErr string

	chunks, err := r.cfg.CaptureSource.Poll()
	if err != nil {
		if errs.Is(err, errs.CaptureTerminal) {
			r.cfg.Log.Errorf("session %s: capture terminated: %v", r.sessionID, err)
			tickErr = err.Error()
			r.publishLocked(tickStart, tickErr)
			r.state = Idle
			return
		}
		tickErr = err.Error()
	}
	for _, c := range chunks {
		r.learnerPCM = append(r.learnerPCM, c.Samples...)
	}

	hopSamples := types.SampleRate * types.FrameHopMs / 1000
	windowSamples := types.SampleRate * types.FrameWindowMs / 1000
	if len(r.learnerPCM) >= windowSamples && len(r.learnerPCM)-r.lastExtractLen >= hopSamples {
		bundle, extractErr := features.Extract(r.learnerPCM, types.SampleRate)
		if extractErr != nil {
			if tickErr == "" {
				tickErr = errs.New(errs.FeatureExtractionFailed, "session.tick", extractErr).Error()
			}
		} else {
			r.learnerFeat = bundle
			r.lastExtractLen = len(r.learnerPCM)
		}
	}

	if r.learnerFeat != nil && !r.learnerFeat.Empty() {
		report, alignErr := align.Align(r.referenceFeatures, r.learnerFeat, r.cfg.Weights)
		if alignErr != nil {
			if tickErr == "" {
				tickErr = errs.New(errs.AlignmentFailed, "session.tick", alignErr).Error()
			}
		} else {
			r.lastReport = report
			r.lastScores = score.Score(report)
		}
	}

	latencyMs := float64(r.cfg.Clock.Now().Sub(tickStart)) / float64(time.Millisecond)
	if latencyMs > r.cfg.LatencyBudgetMs && tickErr == "" {
		tickErr = errs.New(errs.LatencyOverrun, "session.tick", errLatencyOverrun(latencyMs, r.cfg.LatencyBudgetMs)).Error()
		r.cfg.Log.Warnf("session %s: %s", r.sessionID, tickErr)
	}

	r.publishLocked(tickStart, tickErr)
}

// publishLocked assembles and atomically swaps in a new snapshot. Callers
// must hold r.mu.
func (r *Runtime) publishLocked(tickStart time.Time, tickErr string) {
	r.sequence++
	r.snapshotCount++
	snapshot := &types.SessionSnapshot{
		Sequence:   r.sequence,
		CapturedAt: tickStart,
		Report:     r.lastReport,
		Scores:     r.lastScores,
		LatencyMs:  float64(r.cfg.Clock.Now().Sub(tickStart)) / float64(time.Millisecond),
		Error:      tickErr,
	}
	r.latest.Store(snapshot)
}
