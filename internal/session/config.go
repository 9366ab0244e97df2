package session

import (
	"time"

	"github.com/flowalyzer/pronunciation/internal/capture"
	"github.com/flowalyzer/pronunciation/internal/clock"
	"github.com/flowalyzer/pronunciation/internal/history"
	"github.com/flowalyzer/pronunciation/internal/logger"
	"github.com/flowalyzer/pronunciation/internal/playback"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// defaultTickInterval targets the ~50ms cadence spec.md §4.4 asks for.
const defaultTickInterval = 50 * time.Millisecond

// defaultLatencyBudgetMs is the advisory per-tick latency budget.
const defaultLatencyBudgetMs = 200.0

// Config is the runtime's dependency set, built via functional options in
// the same style as the acoustic fingerprinting service's own Config/Option
// pair, generalized from Storage/Logger to the session's full set of
// dependency-injected collaborators (capture source, reference player,
// clock, history store, logger).
type Config struct {
	ReferencePath   string
	CaptureSource   capture.Source
	Player          playback.Player
	Clock           clock.Clock
	History         *history.Store
	Log             *logger.Logger
	Weights         types.AlignmentWeights
	TickInterval    time.Duration
	LatencyBudgetMs float64
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithReferencePath records the reference clip's path for history entries.
func WithReferencePath(path string) Option {
	return func(c *Config) { c.ReferencePath = path }
}

// WithCaptureSource injects the capture source the runtime drives.
func WithCaptureSource(source capture.Source) Option {
	return func(c *Config) { c.CaptureSource = source }
}

// WithPlayer injects the reference player the runtime drives.
func WithPlayer(player playback.Player) Option {
	return func(c *Config) { c.Player = player }
}

// WithClock injects the clock the runtime reads "now" and sleeps against.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) { c.Clock = clk }
}

// WithHistoryStore injects the practice history store. A nil store (the
// default) disables history recording entirely.
func WithHistoryStore(store *history.Store) Option {
	return func(c *Config) { c.History = store }
}

// WithLogger injects the logger the runtime writes tick warnings to.
func WithLogger(log *logger.Logger) Option {
	return func(c *Config) { c.Log = log }
}

// WithWeights sets the DTW cost function's per-stream weights.
func WithWeights(weights types.AlignmentWeights) Option {
	return func(c *Config) { c.Weights = weights }
}

// WithTickInterval overrides the ~50ms default tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(c *Config) { c.TickInterval = d }
}

// WithLatencyBudgetMs overrides the 200ms advisory latency budget.
func WithLatencyBudgetMs(ms float64) Option {
	return func(c *Config) { c.LatencyBudgetMs = ms }
}

func defaultConfig() *Config {
	return &Config{
		Clock:           clock.Real{},
		Player:          playback.NewLogPlayer(nil),
		Log:             logger.GetLogger(),
		TickInterval:    defaultTickInterval,
		LatencyBudgetMs: defaultLatencyBudgetMs,
	}
}
