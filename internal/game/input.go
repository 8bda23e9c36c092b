package game

import (
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/clout-chase/internal/sim"
)

// trackedKeys are polled every frame for edge detection.
var trackedKeys = []ebiten.Key{
	ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowLeft, ebiten.KeyArrowRight,
	ebiten.KeyW, ebiten.KeyA, ebiten.KeyS, ebiten.KeyD,
	ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyNumpadEnter, ebiten.KeyBackspace,
	ebiten.KeyM, ebiten.KeyC, ebiten.KeyEscape,
}

// keyEdges turns level-triggered key state into presses.
type keyEdges struct {
	prev map[ebiten.Key]bool
	cur  map[ebiten.Key]bool
}

func newKeyEdges() *keyEdges {
	return &keyEdges{prev: map[ebiten.Key]bool{}, cur: map[ebiten.Key]bool{}}
}

func (k *keyEdges) poll(pressed func(ebiten.Key) bool) {
	k.prev, k.cur = k.cur, make(map[ebiten.Key]bool, len(trackedKeys))
	for _, key := range trackedKeys {
		k.cur[key] = pressed(key)
	}
}

// just reports a key that went down since the last poll.
func (k *keyEdges) just(key ebiten.Key) bool {
	return k.cur[key] && !k.prev[key]
}

func dirForKey(k ebiten.Key) sim.Dir {
	switch k {
	case ebiten.KeyArrowUp, ebiten.KeyW:
		return sim.DirUp
	case ebiten.KeyArrowDown, ebiten.KeyS:
		return sim.DirDown
	case ebiten.KeyArrowLeft, ebiten.KeyA:
		return sim.DirLeft
	case ebiten.KeyArrowRight, ebiten.KeyD:
		return sim.DirRight
	default:
		return sim.DirNone
	}
}

// --- On-screen arrows ---

const padSize = 40

type padButton struct {
	dir        sim.Dir
	x, y, w, h int
}

func (b padButton) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h
}

// padButtons lays out the arrow cross with its top edge at top, centred on cx.
func padButtons(cx, top int) []padButton {
	const gap = 4
	row2 := top + padSize + gap
	return []padButton{
		{dir: sim.DirUp, x: cx - padSize/2, y: top, w: padSize, h: padSize},
		{dir: sim.DirLeft, x: cx - padSize/2 - gap - padSize, y: row2, w: padSize, h: padSize},
		{dir: sim.DirDown, x: cx - padSize/2, y: row2, w: padSize, h: padSize},
		{dir: sim.DirRight, x: cx + padSize/2 + gap, y: row2, w: padSize, h: padSize},
	}
}

func hitPad(buttons []padButton, x, y int) sim.Dir {
	for _, b := range buttons {
		if b.contains(x, y) {
			return b.dir
		}
	}
	return sim.DirNone
}

// --- Username entry ---

const maxNameRunes = 32

// editName applies one frame of typing to name. Control characters are
// dropped and the result never exceeds maxNameRunes.
func editName(name string, typed []rune, backspace bool) string {
	r := []rune(name)
	if backspace && len(r) > 0 {
		r = r[:len(r)-1]
	}
	for _, c := range typed {
		if len(r) >= maxNameRunes {
			break
		}
		if unicode.IsControl(c) || !unicode.IsPrint(c) {
			continue
		}
		r = append(r, c)
	}
	return string(r)
}
