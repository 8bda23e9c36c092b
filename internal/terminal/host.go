// Package terminal runs the game in a text terminal through tcell.
package terminal

import (
	"context"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/clout-chase/internal/sim"
)

const standingsTimeout = 3 * time.Second

// Config wires a Host.
type Config struct {
	Board   sim.Leaderboard
	User    string
	Offline bool
	Seed    int64
	Logger  *log.Logger
	// Sched overrides the wall-clock scheduler; tests pass a ManualScheduler.
	Sched sim.Scheduler
}

// Host owns the screen and one engine. Everything except leaderboard
// fetches runs on the goroutine that calls Run.
type Host struct {
	screen  tcell.Screen
	engine  *sim.Engine
	calls   <-chan func()
	board   sim.Leaderboard
	user    string
	offline bool
	logger  *log.Logger

	standings []sim.Standing
	updates   chan []sim.Standing
	quit      bool
}

// New builds a host drawing to screen. The screen must already be
// initialised.
func New(screen tcell.Screen, cfg Config) *Host {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[tui] ", log.LstdFlags)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	h := &Host{
		screen:  screen,
		board:   cfg.Board,
		user:    cfg.User,
		offline: cfg.Offline,
		logger:  cfg.Logger,
		updates: make(chan []sim.Standing, 1),
	}
	sched := cfg.Sched
	if sched == nil {
		ts := sim.NewTickerScheduler(8)
		h.calls = ts.Calls()
		sched = ts
	}
	opts := []sim.Option{
		sim.WithRand(rand.New(rand.NewSource(seed))), // #nosec G404 -- game only
		sim.WithRenderer(sim.RendererFunc(func(sim.Snapshot) { h.Draw() })),
		// The engine logger would scribble over the screen.
		sim.WithLogger(log.New(io.Discard, "", 0)),
		sim.WithWinRecorded(func(sim.User) { h.fetchStandings() }),
	}
	if cfg.Board != nil {
		opts = append(opts, sim.WithLeaderboard(cfg.Board, cfg.User))
	}
	h.engine = sim.New(sched, opts...)
	return h
}

// Engine exposes the engine for inspection.
func (h *Host) Engine() *sim.Engine { return h.engine }

// Run processes input, ticks and leaderboard updates until the player quits
// or ctx is done. It closes the engine before returning.
func (h *Host) Run(ctx context.Context) error {
	defer h.engine.Close()

	events := make(chan tcell.Event, 32)
	stop := make(chan struct{})
	defer close(stop)
	go h.screen.ChannelEvents(events, stop)

	h.fetchStandings()
	h.Draw()
	for !h.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				h.HandleKey(ev)
			case *tcell.EventResize:
				h.screen.Sync()
			}
			h.Draw()
		case call := <-h.calls:
			call()
		case rows := <-h.updates:
			h.standings = rows
			h.Draw()
		}
	}
	return nil
}

// HandleKey applies one key press and reports whether the host should quit.
//
//	arrows / WASD  steer
//	space          start, or restart at any time
//	enter          dismiss a win or loss
//	q / esc        quit
func (h *Host) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		h.quit = true
	case tcell.KeyUp:
		h.engine.Queue(sim.DirUp)
	case tcell.KeyDown:
		h.engine.Queue(sim.DirDown)
	case tcell.KeyLeft:
		h.engine.Queue(sim.DirLeft)
	case tcell.KeyRight:
		h.engine.Queue(sim.DirRight)
	case tcell.KeyEnter:
		h.engine.Acknowledge()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			h.quit = true
		case ' ':
			if !h.engine.Start() {
				h.engine.Restart()
			}
		case 'w', 'W':
			h.engine.Queue(sim.DirUp)
		case 's', 'S':
			h.engine.Queue(sim.DirDown)
		case 'a', 'A':
			h.engine.Queue(sim.DirLeft)
		case 'd', 'D':
			h.engine.Queue(sim.DirRight)
		}
	}
	return h.quit
}

// fetchStandings loads the leaderboard in the background; the result is
// picked up by Run.
func (h *Host) fetchStandings() {
	if h.board == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), standingsTimeout)
		defer cancel()
		rows, err := h.board.Leaderboard(ctx)
		if err != nil {
			h.logger.Printf("leaderboard_fetch_failed err=%v", err)
			return
		}
		select {
		case h.updates <- rows:
		default:
		}
	}()
}
