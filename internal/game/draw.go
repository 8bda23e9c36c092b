package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/clout-chase/internal/sim"
)

var (
	colorBackdrop  = color.RGBA{R: 43, G: 47, B: 32, A: 255}
	colorBoard     = color.RGBA{R: 199, G: 227, B: 146, A: 255} // #C7E392
	colorInk       = color.RGBA{R: 74, G: 80, B: 54, A: 255}    // #4A5036
	colorButton    = color.RGBA{R: 139, G: 149, B: 109, A: 255} // #8B956D
	colorPanel     = color.RGBA{R: 31, G: 35, B: 24, A: 250}
	colorHighlight = color.RGBA{R: 74, G: 80, B: 54, A: 200}
	colorHalo      = color.RGBA{R: 199, G: 227, B: 146, A: 153}
	colorDim       = color.RGBA{R: 0, G: 0, B: 0, A: 204}
	colorRunner    = color.RGBA{R: 120, G: 110, B: 200, A: 255}
	colorPursuer   = color.RGBA{R: 200, G: 90, B: 70, A: 255}
)

var uiFace = text.NewGoXFace(basicfont.Face7x13)

const lineSpacing = 16

// drawLabel draws s centred on (x, y), scaled up from the 7x13 face.
func drawLabel(dst *ebiten.Image, s string, x, y, scale float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.LineSpacing = lineSpacing
	text.Draw(dst, s, uiFace, op)
}

// drawImageFit draws img centred on (cx, cy) scaled down to fit maxW x maxH.
func drawImageFit(dst, img *ebiten.Image, cx, cy, maxW, maxH float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	scale := min(maxW/w, maxH/h, 1)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// drawSprite draws img as a size x size square centred on (cx, cy), rotated
// by angle radians.
func drawSprite(dst, img *ebiten.Image, cx, cy, size, angle float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(size/w, size/h)
	op.GeoM.Rotate(angle)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// --- Board ---

func fillBoard(screen *ebiten.Image, x, y, w, h float32) {
	vector.FillRect(screen, x, y, w, h, colorBoard, false)
	vector.StrokeRect(screen, x-1, y-1, w+2, h+2, 2, colorInk, false)
	vector.StrokeRect(screen, x-3, y-3, w+6, h+6, 1, color.RGBA{R: 199, G: 227, B: 146, A: 100}, false)
}

func (g *Game) drawBoard(screen *ebiten.Image, s sim.Snapshot) {
	ox, oy := float32(g.boardX), float32(g.boardY)
	cs := float32(g.tuning.CellSize)
	head := g.tuning.HeadSize()

	for i, c := range s.Runner {
		if i == 0 {
			continue
		}
		vector.FillRect(screen, ox+float32(c.X)*cs+1, oy+float32(c.Y)*cs+1, cs-2, cs-2, colorInk, false)
	}

	// CLOUT with its halo.
	fx := float64(ox) + float64(s.Collectible.X)*float64(cs) + float64(cs)/2
	fy := float64(oy) + float64(s.Collectible.Y)*float64(cs) + float64(cs)/2
	vector.FillCircle(screen, float32(fx), float32(fy), cs/1.5, colorHalo, true)
	drawLabel(screen, "CLOUT", fx, fy, 1, colorInk)

	if len(s.Runner) > 0 {
		h := s.Runner[0]
		cx := float64(ox) + float64(h.X)*float64(cs) + float64(cs)/2
		cy := float64(oy) + float64(h.Y)*float64(cs) + float64(cs)/2
		drawSprite(screen, g.assets.Runner, cx, cy, head, s.Direction.Angle())
	}

	px := float64(ox) + s.Pursuer.X*float64(cs) + head/2
	py := float64(oy) + s.Pursuer.Y*float64(cs) + head/2
	drawSprite(screen, g.assets.Pursuer, px, py, head, 0)
}

func (g *Game) drawScoreLine(screen *ebiten.Image, s sim.Snapshot) {
	who := g.user
	if g.offline {
		who += " (offline)"
	}
	line := fmt.Sprintf("Score: %d   CLOUT: %d/%d   %s", s.Score, s.Pickups, g.tuning.WinPickups, who)
	drawLabel(screen, line, float64(g.boardX+g.boardW/2), float64(g.boardY+g.boardH+borderWidth/2), 1, colorBoard)
}

// --- Screens ---

func (g *Game) drawLogin(screen *ebiten.Image) {
	cx := float64(g.boardX + g.boardW/2)
	cy := float64(g.boardY + g.boardH/2)
	drawLabel(screen, "CLOUT CHASE", cx, cy-70, 3, colorInk)
	drawLabel(screen, "enter your username:", cx, cy-20, 1, colorInk)

	vector.FillRect(screen, float32(cx-110), float32(cy-4), 220, 26, colorBoard, false)
	vector.StrokeRect(screen, float32(cx-110), float32(cy-4), 220, 26, 2, colorInk, false)
	cursor := ""
	if g.frames/30%2 == 0 {
		cursor = "_"
	}
	drawLabel(screen, g.name+cursor, cx, cy+9, 1, colorInk)

	msg := "press Enter to play"
	switch {
	case g.mode == modeLoggingIn:
		msg = "connecting..."
	case g.loginErr != "":
		msg = g.loginErr
	}
	drawLabel(screen, msg, cx, cy+44, 1, colorInk)
}

func (g *Game) drawReady(screen *ebiten.Image) {
	cx := float64(g.boardX + g.boardW/2)
	drawLabel(screen, "use arrow keys (or buttons) to move!\npress space to restart!\n\nwatch out for the chaser", cx, float64(g.boardY+60), 1, colorInk)

	x, y, w, h := g.startButton()
	bg, fg := colorButton, colorInk
	if g.hover {
		bg, fg = colorInk, colorBoard
	}
	vector.FillRect(screen, float32(x+3), float32(y+3), float32(w), float32(h), color.RGBA{A: 50}, false)
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), bg, false)
	drawLabel(screen, "START GAME", float64(x+w/2), float64(y+h/2), 2, fg)
}

// startButton returns the button rectangle in screen pixels.
func (g *Game) startButton() (x, y, w, h int) {
	w, h = 200, 60
	x = g.boardX + (g.boardW-w)/2
	y = g.boardY + (g.boardH-h)/2 + 40
	return x, y, w, h
}

func (g *Game) drawOutcome(screen *ebiten.Image, s sim.Snapshot) {
	vector.FillRect(screen, float32(g.boardX), float32(g.boardY), float32(g.boardW), float32(g.boardH), colorDim, false)
	cx := float64(g.boardX + g.boardW/2)
	cy := float64(g.boardY + g.boardH/2)

	bw, bh := float32(g.boardW-40), float32(g.boardH-30)
	bx, by := float32(cx)-bw/2, float32(cy)-bh/2
	vector.FillRect(screen, bx, by, bw, bh, colorBoard, false)
	vector.StrokeRect(screen, bx, by, bw, bh, 4, colorInk, false)

	switch s.State {
	case sim.StateWon:
		drawImageFit(screen, g.assets.Reward(s.RewardID), cx, cy-10, float64(bw-20), float64(bh-50))
		drawLabel(screen, fmt.Sprintf("reward #%s unlocked!", s.RewardID), cx, float64(by+bh-28), 1, colorInk)
	case sim.StateLost:
		drawLabel(screen, "LOOOOOOSER!", cx, float64(by+26), 3, colorInk)
		drawImageFit(screen, g.assets.Loss, cx, cy+4, float64(bw-40), float64(bh-100))
		drawLabel(screen, "ha! game over babez!", cx, float64(by+bh-28), 1, colorInk)
	}
	drawLabel(screen, "click or Enter to play again", cx, float64(by+bh-12), 1, colorInk)
}

// --- Controls ---

func (g *Game) drawPad(screen *ebiten.Image) {
	arrows := map[sim.Dir]string{sim.DirUp: "^", sim.DirDown: "v", sim.DirLeft: "<", sim.DirRight: ">"}
	for _, b := range g.pad {
		bg := colorButton
		if g.padLit == b.dir && g.padLitFrames > 0 {
			bg = colorInk
		}
		vector.FillRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), bg, false)
		vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 2, colorInk, false)
		drawLabel(screen, arrows[b.dir], float64(b.x+b.w/2), float64(b.y+b.h/2), 2, colorBoard)
	}
}

func (g *Game) drawToast(screen *ebiten.Image) {
	if g.toast == "" {
		return
	}
	y := float32(g.boardY + 8)
	w := float32(len(g.toast)*7 + 16)
	x := float32(g.boardX+g.boardW/2) - w/2
	vector.FillRect(screen, x, y, w, 20, colorHighlight, false)
	drawLabel(screen, g.toast, float64(g.boardX+g.boardW/2), float64(y+10), 1, colorBoard)
}
