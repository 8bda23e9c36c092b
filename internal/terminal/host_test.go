package terminal

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/clout-chase/internal/sim"
)

type fakeBoard struct{ rows []sim.Standing }

func (b *fakeBoard) EnsureUser(_ context.Context, name string) (sim.User, error) {
	return sim.User{Username: name}, nil
}

func (b *fakeBoard) RecordWin(_ context.Context, name, id string) (sim.User, error) {
	return sim.User{Username: name, RewardsDiscovered: []string{id}, TotalWins: 1}, nil
}

func (b *fakeBoard) Leaderboard(context.Context) ([]sim.Standing, error) { return b.rows, nil }

func newTestHost(t *testing.T, cfg Config) (*Host, tcell.SimulationScreen, *sim.ManualScheduler) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)

	sched := sim.NewManualScheduler()
	cfg.Sched = sched
	cfg.Seed = 7
	cfg.Logger = log.New(io.Discard, "", 0)
	return New(screen, cfg), screen, sched
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func runeAt(s tcell.Screen, c sim.Cell) rune {
	x, y := screenPos(c)
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func char(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestDrawBeforeStart(t *testing.T) {
	h, screen, _ := newTestHost(t, Config{User: "alice"})
	h.Draw()

	if got := rowText(screen, 0); !strings.HasPrefix(got, "CLOUT CHASE  player: alice") {
		t.Errorf("title row = %q", got)
	}
	if got := rowText(screen, boardTop+11); !strings.Contains(got, "press space to start") {
		t.Errorf("banner row = %q", got)
	}
	r, _, _, _ := screen.GetContent(boardLeft, boardTop)
	if r != tcell.RuneULCorner {
		t.Errorf("frame corner = %q", r)
	}
}

func TestSpaceStartsAndDrawsEntities(t *testing.T) {
	h, screen, _ := newTestHost(t, Config{})
	h.HandleKey(char(' '))
	if h.Engine().State() != sim.StateRunning {
		t.Fatalf("state = %v, want running", h.Engine().State())
	}

	if r := runeAt(screen, sim.Cell{X: 10, Y: 10}); r != glyphHead {
		t.Errorf("head glyph = %q", r)
	}
	for _, c := range []sim.Cell{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 3}} {
		if r := runeAt(screen, c); r != glyphPursuer {
			t.Errorf("pursuer glyph at %v = %q", c, r)
		}
	}
	snap := h.Engine().Snapshot()
	if r := runeAt(screen, snap.Collectible); r != glyphClout {
		t.Errorf("collectible glyph at %v = %q", snap.Collectible, r)
	}
	if got := rowText(screen, boardTop+22); !strings.HasPrefix(got, "score 0  clout 0/5  tick 100ms") {
		t.Errorf("status row = %q", got)
	}
}

func TestArrowQueuesDirection(t *testing.T) {
	h, screen, sched := newTestHost(t, Config{})
	h.HandleKey(char(' '))
	h.HandleKey(key(tcell.KeyDown))
	sched.Advance(h.Engine().Interval())

	head := h.Engine().Snapshot().Runner[0]
	if head != (sim.Cell{X: 10, Y: 11}) {
		t.Fatalf("head = %v, want (10,11)", head)
	}
	if r := runeAt(screen, head); r != glyphHead {
		t.Errorf("tick did not redraw: %q at head", r)
	}
}

func TestWASDSteers(t *testing.T) {
	h, _, sched := newTestHost(t, Config{})
	h.HandleKey(char(' '))
	h.HandleKey(char('w'))
	sched.Advance(h.Engine().Interval())
	if head := h.Engine().Snapshot().Runner[0]; head != (sim.Cell{X: 10, Y: 9}) {
		t.Fatalf("head = %v, want (10,9)", head)
	}
	// Reversal is ignored.
	h.HandleKey(char('s'))
	sched.Advance(h.Engine().Interval())
	if head := h.Engine().Snapshot().Runner[0]; head != (sim.Cell{X: 10, Y: 8}) {
		t.Fatalf("head = %v, want (10,8)", head)
	}
}

func TestEnterAcknowledgesOutcome(t *testing.T) {
	h, screen, sched := newTestHost(t, Config{})
	h.HandleKey(char(' '))

	h.HandleKey(key(tcell.KeyEnter))
	if h.Engine().State() != sim.StateRunning {
		t.Fatal("enter should not affect a running session")
	}

	for i := 0; i < 1000 && !h.Engine().State().Terminal(); i++ {
		sched.Advance(h.Engine().Interval())
	}
	if !h.Engine().State().Terminal() {
		t.Fatal("session never ended")
	}
	msg, _, _ := banner(h.Engine().Snapshot())
	if got := rowText(screen, boardTop+11); !strings.Contains(got, strings.TrimSpace(msg)) {
		t.Errorf("outcome banner missing: %q", got)
	}

	h.HandleKey(key(tcell.KeyEnter))
	if h.Engine().State() != sim.StateRunning {
		t.Fatalf("state after enter = %v", h.Engine().State())
	}
}

func TestSpaceRestartsRunningSession(t *testing.T) {
	h, _, sched := newTestHost(t, Config{})
	h.HandleKey(char(' '))
	sched.Advance(3 * h.Engine().Interval())
	if h.Engine().Snapshot().Tick == 0 {
		t.Fatal("no ticks ran")
	}
	h.HandleKey(char(' '))
	s := h.Engine().Snapshot()
	if s.Tick != 0 || s.Runner[0] != (sim.Cell{X: 10, Y: 10}) {
		t.Fatalf("restart did not reset: tick=%d head=%v", s.Tick, s.Runner[0])
	}
}

func TestQuitKeys(t *testing.T) {
	for _, ev := range []*tcell.EventKey{char('q'), char('Q'), key(tcell.KeyEscape), key(tcell.KeyCtrlC)} {
		h, _, _ := newTestHost(t, Config{})
		if !h.HandleKey(ev) {
			t.Errorf("%s did not quit", ev.Name())
		}
	}
}

func TestRunStopsOnQuitKey(t *testing.T) {
	h, screen, _ := newTestHost(t, Config{})
	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on q")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h, _, _ := newTestHost(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestStandingsColumn(t *testing.T) {
	board := &fakeBoard{rows: []sim.Standing{
		{Username: "alice", UniqueRewards: 4, TotalWins: 6},
		{Username: "bob", UniqueRewards: 1, TotalWins: 1},
	}}
	h, screen, _ := newTestHost(t, Config{Board: board, User: "bob"})
	h.standings = board.rows
	h.Draw()

	if got := rowText(screen, boardTop); !strings.Contains(got, "LEADERBOARD") {
		t.Errorf("header row = %q", got)
	}
	if got := rowText(screen, boardTop+1); !strings.Contains(got, " 1 alice") || !strings.Contains(got, "4/6") {
		t.Errorf("first row = %q", got)
	}
	_, _, style, _ := screen.GetContent(strings.Index(rowText(screen, boardTop+2), "bob"), boardTop+2)
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrBold == 0 {
		t.Error("current player's row is not bold")
	}
}

func TestBanner(t *testing.T) {
	cases := []struct {
		s    sim.Snapshot
		want string
		ok   bool
	}{
		{sim.Snapshot{State: sim.StateNotStarted}, "press space to start", true},
		{sim.Snapshot{State: sim.StateRunning}, "", false},
		{sim.Snapshot{State: sim.StateWon, RewardID: "7"}, "YOU WIN! reward #7", true},
		{sim.Snapshot{State: sim.StateLost, Cause: sim.LossCaught}, "LOOOOOOSER! caught", true},
		{sim.Snapshot{State: sim.StateLost, Cause: sim.LossSelfCollision}, "LOOOOOOSER! ran into yourself", true},
	}
	for _, c := range cases {
		msg, _, ok := banner(c.s)
		if ok != c.ok || strings.TrimSpace(msg) != c.want {
			t.Errorf("banner(%v) = %q %v, want %q %v", c.s.State, msg, ok, c.want, c.ok)
		}
	}
}

func TestPursuerCellsClipped(t *testing.T) {
	tun := sim.DefaultTuning()
	got := pursuerCells(sim.Vec{X: 25, Y: 19}, tun)
	if len(got) != 1 || got[0] != (sim.Cell{X: 25, Y: 19}) {
		t.Fatalf("corner footprint = %v", got)
	}
	if got := pursuerCells(sim.Vec{X: 4.5, Y: 2}, tun); got[0] != (sim.Cell{X: 5, Y: 2}) {
		t.Fatalf("rounded origin = %v", got[0])
	}
}
