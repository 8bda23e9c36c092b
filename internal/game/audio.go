package game

import (
	"bytes"
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/Garsondee/clout-chase/internal/sound"
)

const musicVolume = 0.35

// Audio plays the synthesised effects and the background loop. A nil
// *Audio is silent, which is what muted sessions get.
type Audio struct {
	ctx     *audio.Context
	effects map[sound.Effect][]byte
	music   *audio.Player
	musicOn bool
	logger  *log.Logger
}

// NewAudio renders every clip up front. It returns nil when muted.
func NewAudio(muted bool, logger *log.Logger) *Audio {
	if muted {
		return nil
	}
	a := &Audio{
		ctx:     audio.NewContext(int(sound.SampleRate)),
		effects: map[sound.Effect][]byte{},
		logger:  logger,
	}
	for _, e := range []sound.Effect{sound.EffectPickup, sound.EffectWin, sound.EffectLose, sound.EffectClick} {
		a.effects[e] = sound.Render(sound.For(e))
	}
	theme := sound.Render(sound.Theme())
	loop := audio.NewInfiniteLoop(bytes.NewReader(theme), int64(len(theme)))
	player, err := a.ctx.NewPlayer(loop)
	if err != nil {
		logger.Printf("music_init_failed err=%v", err)
		return a
	}
	player.SetVolume(musicVolume)
	a.music = player
	return a
}

// Play fires a one-shot effect.
func (a *Audio) Play(e sound.Effect) {
	if a == nil {
		return
	}
	pcm, ok := a.effects[e]
	if !ok {
		return
	}
	a.ctx.NewPlayerFromBytes(pcm).Play()
}

// StartMusic begins the loop from the top.
func (a *Audio) StartMusic() {
	if a == nil || a.music == nil {
		return
	}
	if err := a.music.Rewind(); err != nil {
		a.logger.Printf("music_rewind_failed err=%v", err)
	}
	a.music.Play()
	a.musicOn = true
}

// ToggleMusic pauses or resumes the loop and reports whether it is playing.
func (a *Audio) ToggleMusic() bool {
	if a == nil || a.music == nil {
		return false
	}
	if a.musicOn {
		a.music.Pause()
	} else {
		a.music.Play()
	}
	a.musicOn = !a.musicOn
	return a.musicOn
}
