package sim

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"
)

// Snapshot is an immutable copy of everything a host needs to draw a frame.
type Snapshot struct {
	Tick        int
	State       State
	Cause       LossCause
	Started     bool
	Runner      []Cell
	Direction   Dir
	Pursuer     Vec
	Collectible Cell
	Score       int
	Pickups     int
	Interval    time.Duration
	RewardID    string
}

// Renderer receives a snapshot at the end of every tick and after each reset.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// session is the mutable state of one run, rebuilt on every start.
type session struct {
	runner      *Runner
	pursuer     Pursuer
	collectible Cell
	score       int
	pickups     int
	interval    time.Duration
	committed   Dir
	intent      Dir
	state       State
	cause       LossCause
	reward      string
	tick        int
}

// Engine owns one game session and advances it from a single recurring timer.
// It is not safe for concurrent use: ticks and input must come from the same
// goroutine. Only win notifications run elsewhere.
type Engine struct {
	tuning   Tuning
	sched    Scheduler
	rng      *rand.Rand
	renderer Renderer
	board    Leaderboard
	user     string
	logger   *log.Logger
	events   *EventLog
	rewards  *RewardPool

	notifyTimeout time.Duration
	onRecorded    func(User)
	notifyWG      sync.WaitGroup

	s          session
	started    bool
	timer      Timer
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning replaces DefaultTuning.
func WithTuning(t Tuning) Option { return func(e *Engine) { e.tuning = t } }

// WithRand sets the RNG used for collectible placement and rewards.
func WithRand(rng *rand.Rand) Option { return func(e *Engine) { e.rng = rng } }

// WithRenderer sets the render target.
func WithRenderer(r Renderer) Option { return func(e *Engine) { e.renderer = r } }

// WithLeaderboard sets the service wins are reported to and the player name.
func WithLeaderboard(lb Leaderboard, username string) Option {
	return func(e *Engine) {
		e.board = lb
		e.user = username
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithEventLog sets the event sink.
func WithEventLog(l *EventLog) Option { return func(e *Engine) { e.events = l } }

// WithRewardIDs overrides the reward pool contents.
func WithRewardIDs(ids ...string) Option {
	return func(e *Engine) { e.rewards = NewRewardPool(nil, ids...) }
}

// WithNotifyTimeout bounds each win notification.
func WithNotifyTimeout(d time.Duration) Option { return func(e *Engine) { e.notifyTimeout = d } }

// WithWinRecorded registers a callback run after a win is stored. It is
// called from the notification goroutine.
func WithWinRecorded(fn func(User)) Option { return func(e *Engine) { e.onRecorded = fn } }

// New builds an engine in the NotStarted state.
func New(sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		tuning:        DefaultTuning(),
		sched:         sched,
		notifyTimeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	if e.logger == nil {
		e.logger = log.New(os.Stderr, "[sim] ", log.LstdFlags)
	}
	if e.events == nil {
		e.events = NewEventLog(false)
	}
	if e.rewards == nil {
		e.rewards = NewRewardPool(e.rng, DefaultRewardIDs(e.tuning.RewardCount)...)
	} else {
		e.rewards.rng = e.rng
	}
	e.s = session{
		runner:    NewRunner(e.tuning.RunnerStart),
		pursuer:   Pursuer{Pos: e.tuning.PursuerStart},
		interval:  e.tuning.StartInterval,
		committed: DirRight,
		intent:    DirRight,
		state:     StateNotStarted,
	}
	return e
}

// --- Host-facing controls ---

// Start leaves NotStarted and begins the first session. It does nothing once
// the game has been started.
func (e *Engine) Start() bool {
	if e.started {
		return false
	}
	e.started = true
	e.events.Add(0, "session", "start", "first start", 0)
	e.reset()
	return true
}

// Restart resets the session from any state. Before the first Start it is a
// no-op.
func (e *Engine) Restart() bool {
	if !e.started {
		return false
	}
	e.events.Add(e.s.tick, "session", "restart", e.s.state.String(), 0)
	e.reset()
	return true
}

// Acknowledge dismisses a Won or Lost screen and starts a new session.
func (e *Engine) Acknowledge() bool {
	if !e.s.state.Terminal() {
		return false
	}
	e.events.Add(e.s.tick, "session", "acknowledge", e.s.state.String(), 0)
	e.reset()
	return true
}

// Queue records d as the direction for the next tick. It is rejected when
// the session is not running, when d is DirNone, or when d reverses the last
// committed direction.
func (e *Engine) Queue(d Dir) bool {
	if e.s.state != StateRunning || d == DirNone {
		return false
	}
	if d == e.s.committed.Opposite() {
		e.events.AddVerbose(e.s.tick, "direction", "rejected", d.String(), 0)
		return false
	}
	e.s.intent = d
	return true
}

// SetUser changes the name wins are reported under.
func (e *Engine) SetUser(username string) { e.user = username }

// User returns the current player name.
func (e *Engine) User() string { return e.user }

// Close stops the tick timer and waits for pending win notifications.
func (e *Engine) Close() {
	e.stopTimer()
	e.notifyWG.Wait()
}

// WaitNotifications blocks until every win notification has finished.
func (e *Engine) WaitNotifications() { e.notifyWG.Wait() }

// --- Read access ---

// State returns the current state.
func (e *Engine) State() State { return e.s.state }

// Started reports whether Start has ever succeeded.
func (e *Engine) Started() bool { return e.started }

// Interval returns the current tick interval.
func (e *Engine) Interval() time.Duration { return e.s.interval }

// Events returns the engine's event log.
func (e *Engine) Events() *EventLog { return e.events }

// Tuning returns the engine constants.
func (e *Engine) Tuning() Tuning { return e.tuning }

// Snapshot copies the current session.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Tick:        e.s.tick,
		State:       e.s.state,
		Cause:       e.s.cause,
		Started:     e.started,
		Runner:      e.s.runner.Cells(),
		Direction:   e.s.committed,
		Pursuer:     e.s.pursuer.Pos,
		Collectible: e.s.collectible,
		Score:       e.s.score,
		Pickups:     e.s.pickups,
		Interval:    e.s.interval,
		RewardID:    e.s.reward,
	}
}

// --- Session lifecycle ---

func (e *Engine) reset() {
	e.stopTimer()
	t := e.tuning
	e.s = session{
		runner:    NewRunner(t.RunnerStart),
		pursuer:   Pursuer{Pos: t.PursuerStart},
		interval:  t.StartInterval,
		committed: DirRight,
		intent:    DirRight,
		state:     StateRunning,
	}
	e.s.collectible = e.place()
	e.events.Add(0, "state", "change", "→ running", 0)
	e.armTimer()
	e.render()
}

// armTimer replaces the tick timer. The generation counter makes any
// callback from an older timer a no-op.
func (e *Engine) armTimer() {
	e.stopTimer()
	e.generation++
	gen := e.generation
	e.timer = e.sched.Every(e.s.interval, func() { e.onTick(gen) })
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) onTick(gen uint64) {
	if gen != e.generation || e.s.state != StateRunning {
		return
	}
	e.step()
}

// step runs one tick: move runner, pickup, move pursuer, catch, self
// collision, render. The first terminal condition ends the simulation phase.
func (e *Engine) step() {
	s := &e.s
	t := e.tuning
	s.tick++

	if s.intent != s.committed && s.intent != s.committed.Opposite() {
		e.events.Add(s.tick, "direction", "commit", fmt.Sprintf("%s → %s", s.committed, s.intent), 0)
		s.committed = s.intent
	}
	s.intent = s.committed

	head := s.runner.Advance(s.committed, t.TileCount(), t.VerticalTiles())
	e.events.AddVerbose(s.tick, "runner", "position", head.String(), 0)

	if e.pickedUp(head) {
		s.score += t.PointsPerPickup
		s.pickups++
		e.events.Add(s.tick, "pickup", "collect", fmt.Sprintf("%s score=%d", s.collectible, s.score), float64(s.pickups))
		if s.pickups >= t.WinPickups {
			e.win()
			e.render()
			return
		}
		s.collectible = e.place()
		e.events.Add(s.tick, "pickup", "respawn", s.collectible.String(), 0)
		e.rampSpeed()
	} else {
		s.runner.DropTail()
	}

	s.pursuer.Step(head, t.PursuerSpeed, float64(t.TileCount()-1), float64(t.VerticalTiles()-1))
	e.events.AddVerbose(s.tick, "pursuer", "position", s.pursuer.Pos.String(), 0)
	if e.caught(head) {
		e.lose(LossCaught)
		e.render()
		return
	}

	if s.runner.HitsSelf() {
		e.lose(LossSelfCollision)
		e.render()
		return
	}

	e.render()
}

// pickedUp compares pixel-space centres: the head sprite is HeadSize wide,
// the collectible one cell.
func (e *Engine) pickedUp(head Cell) bool {
	t := e.tuning
	cs := float64(t.CellSize)
	hx := float64(head.X)*cs + t.HeadSize()/2
	hy := float64(head.Y)*cs + t.HeadSize()/2
	cx := float64(e.s.collectible.X)*cs + cs/2
	cy := float64(e.s.collectible.Y)*cs + cs/2
	return math.Hypot(hx-cx, hy-cy) < t.PickupRadius
}

// caught compares pixel-space centres of two HeadSize sprites.
func (e *Engine) caught(head Cell) bool {
	t := e.tuning
	cs := float64(t.CellSize)
	half := t.HeadSize() / 2
	hx := float64(head.X)*cs + half
	hy := float64(head.Y)*cs + half
	px := e.s.pursuer.Pos.X*cs + half
	py := e.s.pursuer.Pos.Y*cs + half
	return math.Hypot(hx-px, hy-py) < t.CatchRadius
}

func (e *Engine) place() Cell {
	c, err := PlaceCollectible(e.rng, e.tuning, e.s.runner.Body, e.s.pursuer.Pos)
	if err != nil {
		panic(fmt.Sprintf("sim: collectible placement: %v", err))
	}
	return c
}

func (e *Engine) rampSpeed() {
	s := &e.s
	t := e.tuning
	if s.interval <= t.MinInterval {
		return
	}
	prev := s.interval
	s.interval -= t.IntervalStep
	if s.interval < t.MinInterval {
		s.interval = t.MinInterval
	}
	e.events.Add(s.tick, "speed", "interval", fmt.Sprintf("%v → %v", prev, s.interval), float64(s.interval.Milliseconds()))
	e.armTimer()
}

func (e *Engine) win() {
	s := &e.s
	e.stopTimer()
	s.state = StateWon
	s.reward = e.rewards.Next()
	e.events.Add(s.tick, "state", "change", "running → won", float64(s.score))
	e.events.Add(s.tick, "reward", "select", s.reward, float64(e.rewards.Remaining()))
	e.notifyWin(s.reward)
}

func (e *Engine) lose(cause LossCause) {
	s := &e.s
	e.stopTimer()
	s.state = StateLost
	s.cause = cause
	e.events.Add(s.tick, "state", "change", "running → lost: "+cause.String(), float64(s.score))
}

// notifyWin reports the win without blocking the tick. Failures are logged.
func (e *Engine) notifyWin(rewardID string) {
	if e.board == nil || e.user == "" {
		e.events.Add(e.s.tick, "leaderboard", "skip", "no player registered", 0)
		return
	}
	e.events.Add(e.s.tick, "leaderboard", "notify", e.user+" "+rewardID, 0)
	user, board, timeout, onRecorded := e.user, e.board, e.notifyTimeout, e.onRecorded
	e.notifyWG.Add(1)
	go func() {
		defer e.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := board.RecordWin(ctx, user, rewardID)
		if err != nil {
			e.logger.Printf("record_win_failed user=%q reward=%s err=%v", user, rewardID, err)
			return
		}
		e.logger.Printf("record_win user=%q reward=%s wins=%d unique=%d", rec.Username, rewardID, rec.TotalWins, len(rec.RewardsDiscovered))
		if onRecorded != nil {
			onRecorded(rec)
		}
	}()
}

func (e *Engine) render() {
	if e.renderer != nil {
		e.renderer.Render(e.Snapshot())
	}
}
