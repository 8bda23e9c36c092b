package sim

import "math"

// Autopilot steers the runner for headless runs and demos. It looks one move
// ahead: moves that hit the body or land inside the pursuer's catch range are
// discarded, and the rest are ranked by wrapped distance to the collectible
// minus a bonus for distance from the pursuer.
type Autopilot struct {
	// Caution weights how strongly the pursuer repels the runner.
	Caution float64
}

// NewAutopilot returns an autopilot with the default caution.
func NewAutopilot() *Autopilot {
	return &Autopilot{Caution: 0.35}
}

// Choose returns the direction to queue for the next tick. It returns
// DirNone when the snapshot is not running.
func (a *Autopilot) Choose(s Snapshot, t Tuning) Dir {
	if s.State != StateRunning || len(s.Runner) == 0 {
		return DirNone
	}
	cols, rows := t.TileCount(), t.VerticalTiles()
	head := s.Runner[0]

	// The tail moves away this tick unless the move is a pickup, so it is
	// not an obstacle.
	body := s.Runner
	if len(body) > 1 {
		body = body[:len(body)-1]
	}

	best := DirNone
	bestScore := math.Inf(1)
	fallback := DirNone
	for _, d := range Dirs {
		if d == s.Direction.Opposite() {
			continue
		}
		dx, dy := d.Delta()
		next := Cell{X: wrap(head.X+dx, cols), Y: wrap(head.Y+dy, rows)}
		if occupied(next, body[1:]) {
			continue
		}
		if fallback == DirNone {
			fallback = d
		}
		threat := math.Hypot(float64(next.X)-s.Pursuer.X, float64(next.Y)-s.Pursuer.Y)
		if threat < 1.5 {
			continue
		}
		goal := torusDist(next, s.Collectible, cols, rows)
		score := goal - a.Caution*math.Min(threat, 6)
		if score < bestScore || (score == bestScore && d == s.Direction) {
			best, bestScore = d, score
		}
	}
	if best == DirNone {
		best = fallback
	}
	if best == DirNone {
		return s.Direction
	}
	return best
}

func occupied(c Cell, cells []Cell) bool {
	for _, seg := range cells {
		if seg == c {
			return true
		}
	}
	return false
}

func torusDist(a, b Cell, cols, rows int) float64 {
	dx := absInt(a.X - b.X)
	if cols-dx < dx {
		dx = cols - dx
	}
	dy := absInt(a.Y - b.Y)
	if rows-dy < dy {
		dy = rows - dy
	}
	return float64(dx + dy)
}
