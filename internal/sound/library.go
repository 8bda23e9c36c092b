package sound

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// Effect names a one-shot sound.
type Effect int

const (
	EffectPickup Effect = iota
	EffectWin
	EffectLose
	EffectClick
)

func (e Effect) String() string {
	switch e {
	case EffectPickup:
		return "pickup"
	case EffectWin:
		return "win"
	case EffectLose:
		return "lose"
	case EffectClick:
		return "click"
	default:
		return "unknown"
	}
}

// Pickup is a short rising two-note chirp.
func Pickup() beep.Streamer {
	return withVolume(beep.Seq(
		note(987.77, 60*time.Millisecond, WaveSquare),
		note(1318.51, 110*time.Millisecond, WaveSquare),
	), 0.35)
}

// Win is an arpeggio with an octave overtone on the last note.
func Win() beep.Streamer {
	last := beep.Mix(
		withVolume(note(1046.5, 400*time.Millisecond, WaveSine), 0.7),
		withVolume(note(2093.0, 400*time.Millisecond, WaveSine), 0.3),
	)
	return withVolume(beep.Seq(
		note(523.25, 120*time.Millisecond, WaveSquare),
		note(659.25, 120*time.Millisecond, WaveSquare),
		note(783.99, 120*time.Millisecond, WaveSquare),
		last,
	), 0.4)
}

// Lose is a falling saw buzz.
func Lose() beep.Streamer {
	return withVolume(beep.Seq(
		note(220, 150*time.Millisecond, WaveSaw),
		note(164.81, 150*time.Millisecond, WaveSaw),
		note(110, 350*time.Millisecond, WaveSaw),
	), 0.35)
}

// Click is a tiny noise burst for buttons.
func Click() beep.Streamer {
	d := 25 * time.Millisecond
	return withVolume(NewEnvelope(NewOscillator(0, d, WaveNoise), d, time.Millisecond, 20*time.Millisecond), 0.2)
}

// For returns the streamer for e.
func For(e Effect) beep.Streamer {
	switch e {
	case EffectPickup:
		return Pickup()
	case EffectWin:
		return Win()
	case EffectLose:
		return Lose()
	default:
		return Click()
	}
}

// themeNotes is one bar of the background riff, in Hz; 0 is a rest.
var themeNotes = []float64{
	392.00, 0, 466.16, 392.00, 0, 349.23, 311.13, 293.66,
	392.00, 0, 466.16, 523.25, 0, 466.16, 392.00, 0,
}

// Theme is a single pass of the background music. The host loops it.
func Theme() beep.Streamer {
	const step = 150 * time.Millisecond
	melody := make([]beep.Streamer, 0, len(themeNotes))
	for _, f := range themeNotes {
		if f == 0 {
			melody = append(melody, rest(step))
			continue
		}
		melody = append(melody, note(f, step, WaveSquare))
	}
	length := SampleRate.N(step * time.Duration(len(themeNotes)))

	parts := []beep.Streamer{withVolume(beep.Seq(melody...), 0.18)}
	if bass, err := generators.SineTone(SampleRate, 98.0); err == nil {
		parts = append(parts, withVolume(beep.Take(length, bass), 0.12))
	} else {
		log.Printf("[sound] bass tone: %v", err)
	}
	return beep.Take(length, beep.Mix(parts...))
}
