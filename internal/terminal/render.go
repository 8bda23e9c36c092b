package terminal

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/clout-chase/internal/sim"
)

// Board cells are two columns wide so the grid looks square.
const (
	boardLeft = 0
	boardTop  = 1
	cellCols  = 2
	maxRows   = 8
)

var (
	styleFrame   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(74, 80, 54))
	styleBoard   = tcell.StyleDefault.Background(tcell.NewRGBColor(199, 227, 146))
	styleBody    = styleBoard.Foreground(tcell.NewRGBColor(74, 80, 54))
	styleHead    = styleBody.Bold(true)
	stylePursuer = styleBoard.Foreground(tcell.ColorMaroon).Bold(true)
	styleClout   = styleBoard.Foreground(tcell.ColorDarkGreen).Bold(true)
	styleText    = tcell.StyleDefault
	styleBanner  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed).Bold(true)
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGold).Bold(true)
	styleMe      = tcell.StyleDefault.Bold(true)
)

// Cell glyphs.
const (
	glyphHead    = '@'
	glyphBody    = 'o'
	glyphPursuer = 'X'
	glyphClout   = '$'
)

// Draw renders the current engine state and shows the screen.
func (h *Host) Draw() {
	s := h.engine.Snapshot()
	t := h.engine.Tuning()
	cols, rows := t.TileCount(), t.VerticalTiles()

	h.screen.Clear()
	title := "CLOUT CHASE"
	if h.user != "" {
		title += "  player: " + h.user
		if h.offline {
			title += " (offline)"
		}
	}
	drawText(h.screen, boardLeft, 0, title, styleText.Bold(true))

	w := cols*cellCols + 2
	drawBox(h.screen, boardLeft, boardTop, w, rows+2, styleFrame)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols*cellCols; x++ {
			h.screen.SetContent(boardLeft+1+x, boardTop+1+y, ' ', nil, styleBoard)
		}
	}

	setCell(h.screen, s.Collectible, glyphClout, styleClout)
	for i, c := range s.Runner {
		if i == 0 {
			continue
		}
		setCell(h.screen, c, glyphBody, styleBody)
	}
	if len(s.Runner) > 0 {
		setCell(h.screen, s.Runner[0], glyphHead, styleHead)
	}
	for _, c := range pursuerCells(s.Pursuer, t) {
		setCell(h.screen, c, glyphPursuer, stylePursuer)
	}

	statusY := boardTop + rows + 2
	drawText(h.screen, boardLeft, statusY, statusLine(s, t), styleText)
	drawText(h.screen, boardLeft, statusY+1, "arrows/wasd move  space start/restart  enter continue  q quit", styleFrame)

	if msg, st, ok := banner(s); ok {
		x := boardLeft + (w-len(msg))/2
		drawText(h.screen, max(x, boardLeft), boardTop+1+rows/2, msg, st)
	}

	h.drawStandings(boardLeft+w+2, boardTop)
	h.screen.Show()
}

func (h *Host) drawStandings(x, y int) {
	if h.board == nil {
		return
	}
	drawText(h.screen, x, y, "LEADERBOARD", styleText.Bold(true))
	if len(h.standings) == 0 {
		drawText(h.screen, x, y+1, "(empty)", styleFrame)
		return
	}
	for i, r := range h.standings {
		if i >= maxRows {
			break
		}
		st := styleText
		if r.Username == h.user {
			st = styleMe
		}
		drawText(h.screen, x, y+1+i, fmt.Sprintf("%2d %-12s %2d/%d", i+1, r.Username, r.UniqueRewards, r.TotalWins), st)
	}
}

// statusLine summarises score and speed.
func statusLine(s sim.Snapshot, t sim.Tuning) string {
	return fmt.Sprintf("score %d  clout %d/%d  tick %v", s.Score, s.Pickups, t.WinPickups, s.Interval)
}

// banner is the centred message for non-running states.
func banner(s sim.Snapshot) (string, tcell.Style, bool) {
	switch s.State {
	case sim.StateNotStarted:
		return " press space to start ", styleBanner, true
	case sim.StateWon:
		return fmt.Sprintf(" YOU WIN! reward #%s ", s.RewardID), styleWin, true
	case sim.StateLost:
		if s.Cause == sim.LossCaught {
			return " LOOOOOOSER! caught ", styleBanner, true
		}
		return " LOOOOOOSER! ran into yourself ", styleBanner, true
	}
	return "", styleText, false
}

// pursuerCells is the head-sized footprint of the pursuer, clipped to the
// board.
func pursuerCells(p sim.Vec, t sim.Tuning) []sim.Cell {
	x0, y0 := int(math.Round(p.X)), int(math.Round(p.Y))
	n := t.HeadScale
	out := make([]sim.Cell, 0, n*n)
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			c := sim.Cell{X: x0 + dx, Y: y0 + dy}
			if c.X < t.TileCount() && c.Y < t.VerticalTiles() {
				out = append(out, c)
			}
		}
	}
	return out
}

// screenPos maps a board cell to its first screen column and row.
func screenPos(c sim.Cell) (int, int) {
	return boardLeft + 1 + c.X*cellCols, boardTop + 1 + c.Y
}

func setCell(s tcell.Screen, c sim.Cell, r rune, st tcell.Style) {
	x, y := screenPos(c)
	s.SetContent(x, y, r, nil, st)
	s.SetContent(x+1, y, ' ', nil, st)
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, ch := range []rune(text) {
		s.SetContent(x+i, y, ch, nil, st)
	}
}

func drawBox(s tcell.Screen, x, y, w, h int, st tcell.Style) {
	for i := 1; i < w-1; i++ {
		s.SetContent(x+i, y, tcell.RuneHLine, nil, st)
		s.SetContent(x+i, y+h-1, tcell.RuneHLine, nil, st)
	}
	for j := 1; j < h-1; j++ {
		s.SetContent(x, y+j, tcell.RuneVLine, nil, st)
		s.SetContent(x+w-1, y+j, tcell.RuneVLine, nil, st)
	}
	s.SetContent(x, y, tcell.RuneULCorner, nil, st)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, nil, st)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, st)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, st)
}
