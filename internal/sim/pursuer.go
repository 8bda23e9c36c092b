package sim

import "math"

// Pursuer chases the runner head one axis at a time.
type Pursuer struct {
	Pos Vec
}

// Step moves speed cells toward target along whichever axis has the larger
// absolute distance (ties go vertical), then clamps to [0,maxX]x[0,maxY].
// The pursuer never wraps.
func (p *Pursuer) Step(target Cell, speed, maxX, maxY float64) {
	dx := float64(target.X) - p.Pos.X
	dy := float64(target.Y) - p.Pos.Y
	switch {
	case math.Abs(dx) > math.Abs(dy):
		p.Pos.X += math.Copysign(speed, dx)
	case dy != 0:
		p.Pos.Y += math.Copysign(speed, dy)
	}
	p.Pos.X = clamp(p.Pos.X, 0, maxX)
	p.Pos.Y = clamp(p.Pos.Y, 0, maxY)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
