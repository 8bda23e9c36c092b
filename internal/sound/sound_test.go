package sound

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// constStreamer emits v forever.
type constStreamer float64

func (c constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = float64(c)
		samples[i][1] = -float64(c)
	}
	return len(samples), true
}

func (constStreamer) Err() error { return nil }

func TestEncodePCM16ClampsAndInterleaves(t *testing.T) {
	out := EncodePCM16(constStreamer(2.5), 10)
	if len(out) != 40 {
		t.Fatalf("len = %d, want 40", len(out))
	}
	left := int16(binary.LittleEndian.Uint16(out[0:]))
	right := int16(binary.LittleEndian.Uint16(out[2:]))
	if left != 32767 || right != -32767 {
		t.Fatalf("frame = %d,%d want 32767,-32767", left, right)
	}
}

func TestEncodePCM16StopsAtEnd(t *testing.T) {
	out := EncodePCM16(beep.Take(700, constStreamer(0.5)), 10000)
	if len(out) != 700*4 {
		t.Fatalf("len = %d, want %d", len(out), 700*4)
	}
}

func TestEffectsHaveExpectedLength(t *testing.T) {
	cases := []struct {
		e    Effect
		want time.Duration
	}{
		{EffectPickup, 170 * time.Millisecond},
		{EffectWin, 760 * time.Millisecond},
		{EffectLose, 650 * time.Millisecond},
		{EffectClick, 25 * time.Millisecond},
	}
	for _, tc := range cases {
		got := len(Render(For(tc.e))) / 4
		want := SampleRate.N(tc.want)
		// Allow one sample of rounding per note.
		if got < want-8 || got > want+8 {
			t.Errorf("%s: %d samples, want ~%d", tc.e, got, want)
		}
	}
}

func TestThemeIsOneBar(t *testing.T) {
	got := len(Render(Theme())) / 4
	want := SampleRate.N(150 * time.Millisecond * time.Duration(len(themeNotes)))
	if got != want {
		t.Fatalf("theme = %d samples, want %d", got, want)
	}
}

func TestEnvelopeStartsSilent(t *testing.T) {
	d := 50 * time.Millisecond
	s := NewEnvelope(NewOscillator(440, d, WaveSquare), d, 10*time.Millisecond, 10*time.Millisecond)
	buf := make([][2]float64, 1)
	s.Stream(buf)
	if buf[0][0] != 0 {
		t.Fatalf("first sample = %f, want 0", buf[0][0])
	}
}
