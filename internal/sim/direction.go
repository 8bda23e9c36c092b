package sim

import "math"

// Dir is a unit step along exactly one axis. Up decreases Y.
type Dir uint8

const (
	DirNone Dir = iota
	DirUp
	DirRight
	DirDown
	DirLeft
)

// Dirs lists the four movement directions in clockwise order.
var Dirs = [4]Dir{DirUp, DirRight, DirDown, DirLeft}

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "none"
	}
}

// Delta returns the (dx, dy) cell offset for one step.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction. DirNone is its own opposite.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirNone
	}
}

// Angle is the sprite rotation in radians for a head facing d (right = 0).
func (d Dir) Angle() float64 {
	switch d {
	case DirLeft:
		return math.Pi
	case DirDown:
		return math.Pi / 2
	case DirUp:
		return -math.Pi / 2
	default:
		return 0
	}
}
