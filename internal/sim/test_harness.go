package sim

import (
	"io"
	"log"
	"math/rand"
)

// TestSim is a headless harness around Engine used by tests and the
// headless report. It drives a ManualScheduler one tick at a time, records
// every rendered frame and can place entities directly.
type TestSim struct {
	Engine *Engine
	Sched  *ManualScheduler
	Log    *EventLog
	Frames []Snapshot

	rng       *rand.Rand
	tuning    Tuning
	board     Leaderboard
	user      string
	autopilot *Autopilot
	opts      []Option
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // applied before the engine exists
	simOptState                      // applied after Start
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithSimTuning replaces the default constants.
func WithSimTuning(t Tuning) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.tuning = t }}
}

// WithVerbose enables per-tick position logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Log = NewEventLog(v) }}
}

// WithSimLeaderboard wires a leaderboard and player name.
func WithSimLeaderboard(lb Leaderboard, username string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.board = lb
		ts.user = username
	}}
}

// WithAutopilot lets an Autopilot queue a direction before every tick.
func WithAutopilot(a *Autopilot) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.autopilot = a }}
}

// WithEngineOption passes an extra Option through to New.
func WithEngineOption(o Option) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.opts = append(ts.opts, o) }}
}

// WithRunner replaces the runner body, head first.
func WithRunner(cells ...Cell) SimOption {
	return SimOption{simOptState, func(ts *TestSim) {
		ts.Engine.s.runner = NewRunner(cells...)
	}}
}

// WithPursuer moves the pursuer.
func WithPursuer(x, y float64) SimOption {
	return SimOption{simOptState, func(ts *TestSim) {
		ts.Engine.s.pursuer.Pos = Vec{X: x, Y: y}
	}}
}

// WithCollectible moves the collectible.
func WithCollectible(x, y int) SimOption {
	return SimOption{simOptState, func(ts *TestSim) {
		ts.Engine.s.collectible = Cell{X: x, Y: y}
	}}
}

// WithDirection sets the committed direction.
func WithDirection(d Dir) SimOption {
	return SimOption{simOptState, func(ts *TestSim) {
		ts.Engine.s.committed = d
		ts.Engine.s.intent = d
	}}
}

// NewTestSim builds and starts an engine in two passes:
//  1. Infrastructure options, then New + Start
//  2. State overrides on the running session
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Sched:  NewManualScheduler(),
		Log:    NewEventLog(false),
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		tuning: DefaultTuning(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	engineOpts := []Option{
		WithTuning(ts.tuning),
		WithRand(ts.rng),
		WithEventLog(ts.Log),
		WithLogger(log.New(io.Discard, "", 0)),
		WithRenderer(RendererFunc(func(s Snapshot) { ts.Frames = append(ts.Frames, s) })),
	}
	if ts.board != nil {
		engineOpts = append(engineOpts, WithLeaderboard(ts.board, ts.user))
	}
	engineOpts = append(engineOpts, ts.opts...)
	ts.Engine = New(ts.Sched, engineOpts...)
	ts.Engine.Start()
	for _, o := range opts {
		if o.kind == simOptState {
			o.fn(ts)
		}
	}
	return ts
}

// Tick advances virtual time by the current interval, which fires exactly
// one engine tick while the session is running. It reports whether a tick
// ran.
func (ts *TestSim) Tick() bool {
	if ts.autopilot != nil {
		if d := ts.autopilot.Choose(ts.Engine.Snapshot(), ts.tuning); d != DirNone {
			ts.Engine.Queue(d)
		}
	}
	return ts.Sched.Advance(ts.Engine.Interval()) > 0
}

// RunTicks advances up to n ticks, stopping early once the session ends.
// It returns the number of ticks that ran.
func (ts *TestSim) RunTicks(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		if !ts.Tick() {
			break
		}
		ran++
	}
	return ran
}

// RunUntil advances up to maxTicks, stopping when predicate returns true.
// It returns the tick at which the predicate held, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		if !ts.Tick() {
			break
		}
		if predicate(ts) {
			return ts.CurrentTick()
		}
	}
	return -1
}

// CurrentTick returns the session tick counter.
func (ts *TestSim) CurrentTick() int { return ts.Engine.s.tick }

// Snapshot returns the engine's current snapshot.
func (ts *TestSim) Snapshot() Snapshot { return ts.Engine.Snapshot() }

// LastFrame returns the most recent rendered snapshot.
func (ts *TestSim) LastFrame() Snapshot {
	if len(ts.Frames) == 0 {
		return Snapshot{}
	}
	return ts.Frames[len(ts.Frames)-1]
}

// SetCollectible moves the collectible mid-session.
func (ts *TestSim) SetCollectible(c Cell) { ts.Engine.s.collectible = c }
