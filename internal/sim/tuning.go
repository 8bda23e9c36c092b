package sim

import "time"

// Tuning holds every constant the simulation depends on. DefaultTuning
// reproduces the fixed 400x300 board the game ships with.
type Tuning struct {
	CanvasWidth  int // px
	CanvasHeight int // px
	CellSize     int // px per grid cell
	HeadScale    int // runner/pursuer heads are drawn CellSize*HeadScale wide

	PursuerSpeed float64 // cells per tick

	// PickupRadius and CatchRadius are pixel distances between entity
	// centres. They were tuned by eye and are not derived from each other.
	PickupRadius float64
	CatchRadius  float64

	PointsPerPickup int
	WinPickups      int

	StartInterval time.Duration
	IntervalStep  time.Duration
	MinInterval   time.Duration

	SpawnInset           int // cells kept clear along the top/left edges
	Separation           int // collectible forbidden where |dx|<Separation && |dy|<Separation
	MaxPlacementAttempts int

	RunnerStart  Cell
	PursuerStart Vec

	RewardCount int
}

// DefaultTuning returns the shipped game constants.
func DefaultTuning() Tuning {
	t := Tuning{
		CanvasWidth:  400,
		CanvasHeight: 300,
		CellSize:     15,
		HeadScale:    2,

		PursuerSpeed: 0.5,

		PointsPerPickup: 10,
		WinPickups:      5,

		StartInterval: 100 * time.Millisecond,
		IntervalStep:  2 * time.Millisecond,
		MinInterval:   50 * time.Millisecond,

		SpawnInset:           2,
		Separation:           2,
		MaxPlacementAttempts: 512,

		RunnerStart:  Cell{X: 10, Y: 10},
		PursuerStart: Vec{X: 2, Y: 2},

		RewardCount: 12,
	}
	t.PickupRadius = t.HeadSize()/2 + float64(t.CellSize)
	t.CatchRadius = float64(t.CellSize)
	return t
}

// TileCount is the number of columns on the board.
func (t Tuning) TileCount() int { return t.CanvasWidth / t.CellSize }

// VerticalTiles is the number of rows on the board.
func (t Tuning) VerticalTiles() int { return t.CanvasHeight / t.CellSize }

// HeadSize is the drawn edge length of a head sprite in pixels.
func (t Tuning) HeadSize() float64 { return float64(t.CellSize * t.HeadScale) }

// spawnBounds returns the half-open cell ranges collectibles are drawn from.
// The far edge keeps SpawnInset cells of canvas free, measured in pixels.
func (t Tuning) spawnBounds() (minX, maxX, minY, maxY int) {
	minX, minY = t.SpawnInset, t.SpawnInset
	maxX = (t.CanvasWidth - t.CellSize*t.SpawnInset) / t.CellSize
	maxY = (t.CanvasHeight - t.CellSize*t.SpawnInset) / t.CellSize
	return minX, maxX, minY, maxY
}
