package game

import (
	"image/color"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Asset paths, relative to the assets directory.
const (
	runnerAsset  = "otherAssets/runner.png"
	pursuerAsset = "otherAssets/pursuer.png"
	lossAsset    = "otherAssets/loss.png"
	rewardDir    = "rewards"
)

// Assets holds every image the host draws. Missing files are replaced by
// placeholders so the game stays playable without art.
type Assets struct {
	Runner  *ebiten.Image
	Pursuer *ebiten.Image
	Loss    *ebiten.Image
	Rewards map[string]*ebiten.Image
}

// LoadAssets reads images from dir. Each failure is logged once.
func LoadAssets(dir string, rewardIDs []string, logger *log.Logger) *Assets {
	a := &Assets{Rewards: make(map[string]*ebiten.Image, len(rewardIDs))}
	a.Runner = loadOr(dir, runnerAsset, logger, func() *ebiten.Image { return placeholder(30, 30, colorRunner) })
	a.Pursuer = loadOr(dir, pursuerAsset, logger, func() *ebiten.Image { return placeholder(30, 30, colorPursuer) })
	a.Loss = loadOr(dir, lossAsset, logger, func() *ebiten.Image { return placeholder(160, 120, colorPursuer) })
	for _, id := range rewardIDs {
		a.Rewards[id] = loadOr(dir, filepath.Join(rewardDir, id+".png"), logger, func() *ebiten.Image {
			return placeholder(200, 150, colorRunner)
		})
	}
	return a
}

// Reward returns the image for id, or a fresh placeholder.
func (a *Assets) Reward(id string) *ebiten.Image {
	if img, ok := a.Rewards[id]; ok {
		return img
	}
	img := placeholder(200, 150, colorRunner)
	a.Rewards[id] = img
	return img
}

func loadOr(dir, name string, logger *log.Logger, fallback func() *ebiten.Image) *ebiten.Image {
	if dir == "" {
		return fallback()
	}
	img, _, err := ebitenutil.NewImageFromFile(filepath.Join(dir, name))
	if err != nil {
		if logger != nil {
			logger.Printf("asset_load_failed name=%s err=%v", name, err)
		}
		return fallback()
	}
	return img
}

// placeholder is a solid tile with a dark border and a diagonal marker.
func placeholder(w, h int, c color.RGBA) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(c)
	vector.StrokeRect(img, 1, 1, float32(w-2), float32(h-2), 2, colorInk, false)
	vector.StrokeLine(img, 2, 2, float32(w-2), float32(h-2), 1, colorInk, false)
	return img
}
