package sim

import (
	"errors"
	"math"
	"math/rand"
)

// ErrNoFreeCell means the spawn region holds no cell that satisfies the
// separation rules. With the shipped board this cannot happen.
var ErrNoFreeCell = errors.New("sim: no legal collectible cell")

// PlaceCollectible draws a uniform cell from the inset spawn region until it
// is clear of every runner segment and the pursuer. After
// t.MaxPlacementAttempts misses it falls back to a row-major scan so the call
// always terminates.
func PlaceCollectible(rng *rand.Rand, t Tuning, body []Cell, pursuer Vec) (Cell, error) {
	minX, maxX, minY, maxY := t.spawnBounds()
	if maxX <= minX || maxY <= minY {
		return Cell{}, ErrNoFreeCell
	}
	for i := 0; i < t.MaxPlacementAttempts; i++ {
		c := Cell{
			X: rng.Intn(maxX-minX) + minX,
			Y: rng.Intn(maxY-minY) + minY,
		}
		if !tooClose(c, body, pursuer, t.Separation) {
			return c, nil
		}
	}
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			c := Cell{X: x, Y: y}
			if !tooClose(c, body, pursuer, t.Separation) {
				return c, nil
			}
		}
	}
	return Cell{}, ErrNoFreeCell
}

// tooClose reports whether c falls inside the forbidden box around any body
// segment or the pursuer.
func tooClose(c Cell, body []Cell, pursuer Vec, sep int) bool {
	for _, seg := range body {
		if absInt(seg.X-c.X) < sep && absInt(seg.Y-c.Y) < sep {
			return true
		}
	}
	s := float64(sep)
	return math.Abs(float64(c.X)-pursuer.X) < s && math.Abs(float64(c.Y)-pursuer.Y) < s
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
