package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/clout-chase/internal/client"
	"github.com/Garsondee/clout-chase/internal/sim"
	"github.com/Garsondee/clout-chase/internal/sound"
)

var quiet = log.New(io.Discard, "", 0)

// fakeBoard is an in-memory sim.Leaderboard with injectable failures.
type fakeBoard struct {
	mu       sync.Mutex
	users    map[string]sim.User
	rows     []sim.Standing
	fail     error
	lbCalls  atomic.Int32
	ensureOK atomic.Int32
}

func newFakeBoard() *fakeBoard { return &fakeBoard{users: map[string]sim.User{}} }

func (b *fakeBoard) EnsureUser(_ context.Context, name string) (sim.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return sim.User{}, b.fail
	}
	u, ok := b.users[strings.ToLower(name)]
	if !ok {
		u = sim.User{Username: name}
		b.users[strings.ToLower(name)] = u
	}
	b.ensureOK.Add(1)
	return u, nil
}

func (b *fakeBoard) RecordWin(_ context.Context, name, id string) (sim.User, error) {
	return sim.User{Username: name, RewardsDiscovered: []string{id}, TotalWins: 1}, nil
}

func (b *fakeBoard) Leaderboard(_ context.Context) ([]sim.Standing, error) {
	b.lbCalls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return nil, b.fail
	}
	return append([]sim.Standing(nil), b.rows...), nil
}

func (b *fakeBoard) setFail(err error) {
	b.mu.Lock()
	b.fail = err
	b.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Input helpers
// ---------------------------------------------------------------------------

func TestEditName(t *testing.T) {
	cases := []struct {
		name      string
		typed     string
		backspace bool
		want      string
	}{
		{"", "bob", false, "bob"},
		{"bob", "", true, "bo"},
		{"", "", true, ""},
		{"al", "\tice\n", false, "alice"},
		{"ab", "c", true, "ac"},
		{"żó", "ł", false, "żół"},
	}
	for _, c := range cases {
		if got := editName(c.name, []rune(c.typed), c.backspace); got != c.want {
			t.Errorf("editName(%q, %q, %v) = %q, want %q", c.name, c.typed, c.backspace, got, c.want)
		}
	}

	long := strings.Repeat("x", maxNameRunes)
	if got := editName(long, []rune("yz"), false); got != long {
		t.Errorf("name grew past %d runes: %q", maxNameRunes, got)
	}
}

func TestKeyEdges(t *testing.T) {
	k := newKeyEdges()
	down := map[ebiten.Key]bool{ebiten.KeySpace: true}
	pressed := func(key ebiten.Key) bool { return down[key] }

	k.poll(pressed)
	if !k.just(ebiten.KeySpace) {
		t.Fatal("space should register on the first frame it is down")
	}
	k.poll(pressed)
	if k.just(ebiten.KeySpace) {
		t.Fatal("held key should not repeat")
	}
	down[ebiten.KeySpace] = false
	k.poll(pressed)
	down[ebiten.KeySpace] = true
	k.poll(pressed)
	if !k.just(ebiten.KeySpace) {
		t.Fatal("key should register again after release")
	}
}

func TestDirForKey(t *testing.T) {
	cases := map[ebiten.Key]sim.Dir{
		ebiten.KeyArrowUp:    sim.DirUp,
		ebiten.KeyW:          sim.DirUp,
		ebiten.KeyArrowLeft:  sim.DirLeft,
		ebiten.KeyA:          sim.DirLeft,
		ebiten.KeyS:          sim.DirDown,
		ebiten.KeyArrowRight: sim.DirRight,
		ebiten.KeySpace:      sim.DirNone,
	}
	for k, want := range cases {
		if got := dirForKey(k); got != want {
			t.Errorf("dirForKey(%v) = %v, want %v", k, got, want)
		}
	}
}

func TestPadLayout(t *testing.T) {
	pad := padButtons(200, 100)
	if len(pad) != 4 {
		t.Fatalf("got %d buttons", len(pad))
	}
	cases := []struct {
		x, y int
		want sim.Dir
	}{
		{200, 110, sim.DirUp},
		{200, 160, sim.DirDown},
		{150, 160, sim.DirLeft},
		{250, 160, sim.DirRight},
		{200, 99, sim.DirNone},   // above the cross
		{150, 110, sim.DirNone},  // empty corner
		{200, 142, sim.DirNone},  // gap between rows
		{400, 400, sim.DirNone},
	}
	for _, c := range cases {
		if got := hitPad(pad, c.x, c.y); got != c.want {
			t.Errorf("hitPad(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
	for i, a := range pad {
		for _, b := range pad[i+1:] {
			if a.x < b.x+b.w && b.x < a.x+a.w && a.y < b.y+b.h && b.y < a.y+a.h {
				t.Errorf("buttons %v and %v overlap", a.dir, b.dir)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Sound cues
// ---------------------------------------------------------------------------

func TestFrameCue(t *testing.T) {
	running := sim.Snapshot{State: sim.StateRunning, Pickups: 2}
	cases := []struct {
		name      string
		prev, cur sim.Snapshot
		want      sound.Effect
		ok        bool
	}{
		{"pickup", running, sim.Snapshot{State: sim.StateRunning, Pickups: 3}, sound.EffectPickup, true},
		{"plain tick", running, running, 0, false},
		{"win", running, sim.Snapshot{State: sim.StateWon, Pickups: 5}, sound.EffectWin, true},
		{"lose", running, sim.Snapshot{State: sim.StateLost, Pickups: 2}, sound.EffectLose, true},
		{"won stays won", sim.Snapshot{State: sim.StateWon}, sim.Snapshot{State: sim.StateWon}, 0, false},
		{"restart resets pickups", running, sim.Snapshot{State: sim.StateRunning}, 0, false},
		{"first start", sim.Snapshot{State: sim.StateNotStarted}, sim.Snapshot{State: sim.StateRunning}, 0, false},
	}
	for _, c := range cases {
		got, ok := frameCue(c.prev, c.cur)
		if ok != c.ok || got != c.want {
			t.Errorf("%s: frameCue = (%v, %v), want (%v, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestNilAudioIsSilent(t *testing.T) {
	var a *Audio
	a.Play(sound.EffectPickup)
	a.StartMusic()
	if a.ToggleMusic() {
		t.Fatal("nil audio reported music playing")
	}
	if NewAudio(true, quiet) != nil {
		t.Fatal("muted audio should be nil")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestEnsureUserOnline(t *testing.T) {
	b := newFakeBoard()
	res := ensureUser(b, nil, "Alice", quiet)
	if res.err != nil || res.offline || res.board != b || res.user != "Alice" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEnsureUserFallsBackWhenServerDown(t *testing.T) {
	primary := newFakeBoard()
	primary.setFail(errors.New("dial tcp: connection refused"))
	local := newFakeBoard()

	res := ensureUser(primary, func() (sim.Leaderboard, error) { return local, nil }, "bob", quiet)
	if res.err != nil {
		t.Fatalf("fallback login failed: %v", res.err)
	}
	if !res.offline || res.board != local {
		t.Fatalf("expected offline board, got %+v", res)
	}
	if local.ensureOK.Load() != 1 {
		t.Fatalf("fallback EnsureUser calls = %d", local.ensureOK.Load())
	}
}

func TestEnsureUserRejectedNameSkipsFallback(t *testing.T) {
	primary := newFakeBoard()
	primary.setFail(fmt.Errorf("register: %w", &client.StatusError{Code: 400, Message: "bad name"}))
	called := false

	res := ensureUser(primary, func() (sim.Leaderboard, error) {
		called = true
		return newFakeBoard(), nil
	}, "x", quiet)
	if res.err == nil {
		t.Fatal("expected the rejection to surface")
	}
	if called {
		t.Fatal("fallback opened for a rejected name")
	}
}

func TestEnsureUserFallbackOpenFails(t *testing.T) {
	primary := newFakeBoard()
	down := errors.New("timeout")
	primary.setFail(down)

	res := ensureUser(primary, func() (sim.Leaderboard, error) { return nil, errors.New("disk full") }, "bob", quiet)
	if !errors.Is(res.err, down) {
		t.Fatalf("err = %v, want the primary failure", res.err)
	}
}

func TestEnsureUserWithoutBoard(t *testing.T) {
	res := ensureUser(nil, nil, "solo", quiet)
	if res.err != nil || res.board != nil || res.user != "solo" {
		t.Fatalf("unexpected result %+v", res)
	}
}

// ---------------------------------------------------------------------------
// Standings panel
// ---------------------------------------------------------------------------

func TestStandingsRefreshKeepsRowsOnFailure(t *testing.T) {
	b := newFakeBoard()
	b.rows = []sim.Standing{{Username: "alice", UniqueRewards: 3, TotalWins: 4}}
	p := NewStandingsPanel(b, quiet)

	if err := p.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	b.setFail(errors.New("down"))
	if err := p.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	rows, updated, err := p.Rows()
	if len(rows) != 1 || rows[0].Username != "alice" {
		t.Fatalf("rows lost after failure: %+v", rows)
	}
	if updated.IsZero() || err == nil {
		t.Fatalf("updated=%v err=%v", updated, err)
	}
	if s := p.Status(updated.Add(10 * time.Second)); !strings.HasPrefix(s, "stale, updated 10 seconds ago") {
		t.Errorf("status = %q", s)
	}
}

func TestStandingsStatus(t *testing.T) {
	p := NewStandingsPanel(nil, quiet)
	if s := p.Status(time.Now()); s != "loading..." {
		t.Errorf("empty panel status = %q", s)
	}

	b := newFakeBoard()
	b.setFail(errors.New("down"))
	p.SetSource(b)
	_ = p.Refresh(context.Background())
	if s := p.Status(time.Now()); s != "leaderboard offline" {
		t.Errorf("never-fetched failure status = %q", s)
	}

	b.setFail(nil)
	_ = p.Refresh(context.Background())
	_, updated, _ := p.Rows()
	if s := p.Status(updated.Add(3 * time.Minute)); s != "updated 3 minutes ago" {
		t.Errorf("status = %q", s)
	}
}

func TestStandingsText(t *testing.T) {
	b := newFakeBoard()
	b.rows = []sim.Standing{
		{Username: "alice", UniqueRewards: 3, TotalWins: 4},
		{Username: "bob", UniqueRewards: 1, TotalWins: 9},
	}
	p := NewStandingsPanel(b, quiet)
	if !strings.Contains(p.Text(), "(no players yet)") {
		t.Errorf("empty text = %q", p.Text())
	}
	_ = p.Refresh(context.Background())
	want := "CLOUT CHASE LEADERBOARD\n1st alice rewards=3 wins=4\n2nd bob rewards=1 wins=9\n"
	if got := p.Text(); got != want {
		t.Errorf("text =\n%s\nwant\n%s", got, want)
	}
}

func TestStandingsRowsAreCopies(t *testing.T) {
	b := newFakeBoard()
	b.rows = []sim.Standing{{Username: "alice"}}
	p := NewStandingsPanel(b, quiet)
	_ = p.Refresh(context.Background())
	rows, _, _ := p.Rows()
	rows[0].Username = "mallory"
	again, _, _ := p.Rows()
	if again[0].Username != "alice" {
		t.Fatal("Rows leaked internal slice")
	}
}

func TestStandingsPollerRefreshesOnPoke(t *testing.T) {
	b := newFakeBoard()
	p := NewStandingsPanel(b, quiet)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Hour)
		close(done)
	}()

	waitFor(t, func() bool { return b.lbCalls.Load() >= 1 })
	p.Poke()
	waitFor(t, func() bool { return b.lbCalls.Load() >= 2 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPokeNeverBlocks(t *testing.T) {
	p := NewStandingsPanel(nil, quiet)
	for i := 0; i < 10; i++ {
		p.Poke()
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 12); got != "short" {
		t.Errorf("clip short = %q", got)
	}
	if got := clip("averyveryverylongname", 12); got != "averyveryve~" {
		t.Errorf("clip long = %q", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
