package game

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/clout-chase/internal/sim"
)

const (
	panelWidth      = 220
	panelLineHeight = 16
	pollInterval    = 5 * time.Second
	pollTimeout     = 3 * time.Second
)

// StandingsPanel keeps the latest leaderboard snapshot for drawing. A
// background poller refreshes it; Draw and Text only read under the mutex.
type StandingsPanel struct {
	mu      sync.Mutex
	source  sim.Leaderboard
	rows    []sim.Standing
	updated time.Time
	err     error

	logger *log.Logger
	poke   chan struct{}
}

// NewStandingsPanel creates a panel reading from src.
func NewStandingsPanel(src sim.Leaderboard, logger *log.Logger) *StandingsPanel {
	return &StandingsPanel{
		source: src,
		logger: logger,
		poke:   make(chan struct{}, 1),
	}
}

// SetSource switches the leaderboard the panel polls and requests a refresh.
func (p *StandingsPanel) SetSource(src sim.Leaderboard) {
	p.mu.Lock()
	p.source = src
	p.mu.Unlock()
	p.Poke()
}

// Poke asks the poller for an early refresh. It never blocks.
func (p *StandingsPanel) Poke() {
	select {
	case p.poke <- struct{}{}:
	default:
	}
}

// Refresh fetches the leaderboard once. On failure the previous rows are
// kept and the error is remembered for display.
func (p *StandingsPanel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()
	if src == nil {
		return nil
	}
	rows, err := src.Leaderboard(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if p.err == nil && p.logger != nil {
			p.logger.Printf("leaderboard_poll_failed err=%v", err)
		}
		p.err = err
		return err
	}
	p.rows = rows
	p.updated = time.Now()
	p.err = nil
	return nil
}

// Run polls every interval until ctx is done.
func (p *StandingsPanel) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		rctx, cancel := context.WithTimeout(ctx, pollTimeout)
		_ = p.Refresh(rctx)
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.poke:
		}
	}
}

// Rows returns a copy of the latest standings and when they were fetched.
func (p *StandingsPanel) Rows() ([]sim.Standing, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sim.Standing, len(p.rows))
	copy(out, p.rows)
	return out, p.updated, p.err
}

// Status is the footer line: age of the data or the offline marker.
func (p *StandingsPanel) Status(now time.Time) string {
	_, updated, err := p.Rows()
	switch {
	case err != nil && updated.IsZero():
		return "leaderboard offline"
	case err != nil:
		return "stale, updated " + humanize.RelTime(updated, now, "ago", "from now")
	case updated.IsZero():
		return "loading..."
	default:
		return "updated " + humanize.RelTime(updated, now, "ago", "from now")
	}
}

// Text renders the standings as plain text for the clipboard.
func (p *StandingsPanel) Text() string {
	rows, _, _ := p.Rows()
	var sb strings.Builder
	sb.WriteString("CLOUT CHASE LEADERBOARD\n")
	if len(rows) == 0 {
		sb.WriteString("(no players yet)\n")
	}
	for i, r := range rows {
		fmt.Fprintf(&sb, "%s %s rewards=%d wins=%d\n", humanize.Ordinal(i+1), r.Username, r.UniqueRewards, r.TotalWins)
	}
	return sb.String()
}

// Draw renders the panel on the right side of the screen. The current
// player's row is highlighted.
func (p *StandingsPanel) Draw(screen *ebiten.Image, panelX, panelH int, username string, now time.Time) {
	vector.FillRect(screen, float32(panelX), 0, panelWidth, float32(panelH), colorPanel, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1, colorInk, false)

	vector.FillRect(screen, float32(panelX), 0, panelWidth, 18, colorInk, false)
	ebitenutil.DebugPrintAt(screen, "LEADERBOARD", panelX+8, 1)

	rows, _, _ := p.Rows()
	y := 26
	for i, r := range rows {
		if strings.EqualFold(r.Username, username) {
			vector.FillRect(screen, float32(panelX+2), float32(y), panelWidth-4, panelLineHeight, colorHighlight, false)
		}
		line := fmt.Sprintf("%2d %-12s %2d/%-3d", i+1, clip(r.Username, 12), r.UniqueRewards, r.TotalWins)
		ebitenutil.DebugPrintAt(screen, line, panelX+6, y)
		y += panelLineHeight
	}
	if len(rows) == 0 {
		ebitenutil.DebugPrintAt(screen, "no players yet", panelX+6, y)
	}

	footY := panelH - 40
	vector.StrokeLine(screen, float32(panelX), float32(footY), float32(panelX+panelWidth), float32(footY), 1,
		color.RGBA{R: 74, G: 80, B: 54, A: 120}, false)
	ebitenutil.DebugPrintAt(screen, "rewards/wins  [C] copy", panelX+6, footY+2)
	ebitenutil.DebugPrintAt(screen, p.Status(now), panelX+6, footY+18)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
