package sim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBoard records RecordWin calls on a channel.
type fakeBoard struct {
	mu    sync.Mutex
	wins  chan [2]string
	err   error
	users map[string]User
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{wins: make(chan [2]string, 8), users: map[string]User{}}
}

func (f *fakeBoard) EnsureUser(_ context.Context, username string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		u = User{Username: username, RewardsDiscovered: []string{}}
		f.users[username] = u
	}
	return u, nil
}

func (f *fakeBoard) RecordWin(_ context.Context, username, rewardID string) (User, error) {
	f.wins <- [2]string{username, rewardID}
	if f.err != nil {
		return User{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[username]
	u.Username = username
	u.RewardsDiscovered = append(u.RewardsDiscovered, rewardID)
	u.TotalWins++
	f.users[username] = u
	return u, nil
}

func (f *fakeBoard) Leaderboard(context.Context) ([]Standing, error) { return nil, nil }

func waitWin(t *testing.T, f *fakeBoard) [2]string {
	t.Helper()
	select {
	case w := <-f.wins:
		return w
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for RecordWin")
	}
	return [2]string{}
}

func TestEngineStartsOnlyOnce(t *testing.T) {
	sched := NewManualScheduler()
	var frames []Snapshot
	e := New(sched, WithRenderer(RendererFunc(func(s Snapshot) { frames = append(frames, s) })))

	if e.State() != StateNotStarted {
		t.Fatalf("initial state = %s", e.State())
	}
	if e.Restart() {
		t.Fatalf("Restart before Start should be a no-op")
	}
	if e.Queue(DirUp) {
		t.Fatalf("Queue before Start should be rejected")
	}
	if sched.Live() != 0 {
		t.Fatalf("timer armed before Start")
	}
	if !e.Start() {
		t.Fatalf("Start failed")
	}
	if e.Start() {
		t.Fatalf("second Start should fail")
	}
	if len(frames) != 1 || frames[0].State != StateRunning || !frames[0].Started {
		t.Fatalf("reset did not render a running frame: %+v", frames)
	}
	if sched.Live() != 1 {
		t.Fatalf("live timers = %d, want 1", sched.Live())
	}
}

func TestEngineQueueRejectsReversal(t *testing.T) {
	ts := NewTestSim(WithCollectible(20, 15))
	e := ts.Engine

	if e.Queue(DirLeft) {
		t.Errorf("reversal of right accepted")
	}
	if e.Queue(DirNone) {
		t.Errorf("DirNone accepted")
	}
	if !e.Queue(DirUp) {
		t.Fatalf("up rejected")
	}
	// Still measured against the committed direction, not the pending one.
	if !e.Queue(DirDown) {
		t.Fatalf("down rejected while right is committed")
	}
	ts.Tick()
	snap := ts.Snapshot()
	if snap.Direction != DirDown || snap.Runner[0] != (Cell{10, 11}) {
		t.Fatalf("after tick dir=%s head=%s, want down (10,11)", snap.Direction, snap.Runner[0])
	}
	if e.Queue(DirUp) {
		t.Errorf("reversal of down accepted")
	}
}

func TestEngineRestartResetsSession(t *testing.T) {
	ts := NewTestSim(WithCollectible(20, 15))
	ts.RunTicks(3)
	if ts.CurrentTick() != 3 {
		t.Fatalf("tick = %d, want 3", ts.CurrentTick())
	}
	if !ts.Engine.Restart() {
		t.Fatalf("Restart failed")
	}
	snap := ts.Snapshot()
	if snap.Tick != 0 || snap.Score != 0 || len(snap.Runner) != 1 || snap.Runner[0] != (Cell{10, 10}) {
		t.Fatalf("restart did not reset: %+v", snap)
	}
	if snap.Pursuer != (Vec{2, 2}) || snap.Interval != 100*time.Millisecond {
		t.Fatalf("restart did not reset pursuer/interval: %+v", snap)
	}
	if ts.Sched.Live() != 1 {
		t.Fatalf("live timers = %d, want 1", ts.Sched.Live())
	}
	if !ts.Tick() {
		t.Fatalf("no tick after restart")
	}
	if ts.CurrentTick() != 1 {
		t.Fatalf("tick = %d after restart, want 1", ts.CurrentTick())
	}
}

func TestEngineAcknowledgeOnlyWhenTerminal(t *testing.T) {
	ts := NewTestSim(WithPursuer(12, 10), WithCollectible(20, 15))
	if ts.Engine.Acknowledge() {
		t.Fatalf("Acknowledge accepted while running")
	}
	ts.Tick()
	if ts.Engine.State() != StateLost {
		t.Fatalf("state = %s, want lost", ts.Engine.State())
	}
	if ts.Tick() {
		t.Fatalf("tick ran after loss")
	}
	if !ts.Engine.Acknowledge() {
		t.Fatalf("Acknowledge rejected after loss")
	}
	if ts.Engine.State() != StateRunning || ts.CurrentTick() != 0 {
		t.Fatalf("acknowledge did not start a new session")
	}
}

func TestEngineSpeedRampFloor(t *testing.T) {
	ts := NewTestSim(WithCollectible(12, 10))
	ts.Engine.s.interval = 51 * time.Millisecond
	ts.Engine.armTimer()

	ts.Tick()
	if got := ts.Engine.Interval(); got != 50*time.Millisecond {
		t.Fatalf("interval = %v, want 50ms", got)
	}
	ts.Engine.s.collectible = Cell{13, 10}
	ts.Tick()
	if ts.Snapshot().Pickups != 2 {
		t.Fatalf("pickups = %d, want 2", ts.Snapshot().Pickups)
	}
	if got := ts.Engine.Interval(); got != 50*time.Millisecond {
		t.Fatalf("interval = %v below floor", got)
	}
	if n := ts.Log.CountCategory("speed", "interval"); n != 1 {
		t.Fatalf("speed events = %d, want 1", n)
	}
	if ts.Sched.Live() != 1 {
		t.Fatalf("live timers = %d, want 1", ts.Sched.Live())
	}
}

func TestEngineWinNotifiesLeaderboard(t *testing.T) {
	fb := newFakeBoard()
	recorded := make(chan User, 1)
	ts := NewTestSim(
		WithSimLeaderboard(fb, "alice"),
		WithEngineOption(WithWinRecorded(func(u User) { recorded <- u })),
		WithCollectible(12, 10),
	)
	ts.Engine.s.pickups = 4
	ts.Engine.s.score = 40

	ts.Tick()
	snap := ts.Snapshot()
	if snap.State != StateWon {
		t.Fatalf("state = %s, want won", snap.State)
	}
	if snap.Score != 50 || snap.Pickups != 5 {
		t.Fatalf("score=%d pickups=%d, want 50/5", snap.Score, snap.Pickups)
	}
	if snap.RewardID == "" {
		t.Fatalf("no reward selected")
	}
	if ts.Sched.Live() != 0 {
		t.Fatalf("timer still live after win")
	}

	w := waitWin(t, fb)
	if w[0] != "alice" || w[1] != snap.RewardID {
		t.Fatalf("RecordWin(%q, %q), want (alice, %q)", w[0], w[1], snap.RewardID)
	}
	select {
	case u := <-recorded:
		if u.TotalWins != 1 {
			t.Fatalf("recorded wins = %d, want 1", u.TotalWins)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("win callback not called")
	}
	if ts.Tick() {
		t.Fatalf("tick ran after win")
	}
}

func TestEngineWinFailureIsLogged(t *testing.T) {
	fb := newFakeBoard()
	fb.err = errors.New("connection refused")
	var buf bytes.Buffer
	ts := NewTestSim(
		WithSimLeaderboard(fb, "bob"),
		WithEngineOption(WithLogger(log.New(&buf, "", 0))),
		WithCollectible(12, 10),
	)
	ts.Engine.s.pickups = 4

	ts.Tick()
	waitWin(t, fb)
	ts.Engine.WaitNotifications()
	if ts.Engine.State() != StateWon {
		t.Fatalf("state = %s, want won", ts.Engine.State())
	}
	if !strings.Contains(buf.String(), "record_win_failed") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

func TestEngineWinWithoutUserSkipsNotify(t *testing.T) {
	ts := NewTestSim(WithCollectible(12, 10))
	ts.Engine.s.pickups = 4
	ts.Tick()
	if ts.Engine.State() != StateWon {
		t.Fatalf("state = %s, want won", ts.Engine.State())
	}
	if !ts.Log.HasEntry("leaderboard", "skip", "") {
		t.Fatalf("expected leaderboard skip entry")
	}
}

func TestEngineCloseStopsTimer(t *testing.T) {
	ts := NewTestSim()
	ts.Engine.Close()
	if ts.Sched.Live() != 0 {
		t.Fatalf("live timers = %d after Close", ts.Sched.Live())
	}
	if ts.Tick() {
		t.Fatalf("tick ran after Close")
	}
}
