package sim

import "fmt"

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Vec is a fractional grid coordinate, used by the pursuer.
type Vec struct {
	X, Y float64
}

func (v Vec) String() string { return fmt.Sprintf("(%.1f,%.1f)", v.X, v.Y) }

// Runner is the player-controlled body. Body[0] is the head.
type Runner struct {
	Body []Cell
}

// NewRunner builds a runner from head to tail. At least one cell is required.
func NewRunner(cells ...Cell) *Runner {
	if len(cells) == 0 {
		panic("sim: runner needs at least one segment")
	}
	body := make([]Cell, len(cells))
	copy(body, cells)
	return &Runner{Body: body}
}

// Head returns segment 0.
func (r *Runner) Head() Cell { return r.Body[0] }

// Len returns the segment count.
func (r *Runner) Len() int { return len(r.Body) }

// Cells returns a copy of the body.
func (r *Runner) Cells() []Cell {
	out := make([]Cell, len(r.Body))
	copy(out, r.Body)
	return out
}

// Advance prepends a new head one step along d, wrapping independently on
// each axis of a cols x rows torus, and returns it.
func (r *Runner) Advance(d Dir, cols, rows int) Cell {
	dx, dy := d.Delta()
	head := r.Head()
	next := Cell{X: wrap(head.X+dx, cols), Y: wrap(head.Y+dy, rows)}
	r.Body = append(r.Body, Cell{})
	copy(r.Body[1:], r.Body)
	r.Body[0] = next
	return next
}

// DropTail removes the last segment unless only the head is left.
func (r *Runner) DropTail() {
	if len(r.Body) > 1 {
		r.Body = r.Body[:len(r.Body)-1]
	}
}

// HitsSelf reports whether the head shares a cell with any other segment.
func (r *Runner) HitsSelf() bool {
	head := r.Body[0]
	for _, seg := range r.Body[1:] {
		if seg == head {
			return true
		}
	}
	return false
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
