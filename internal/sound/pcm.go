package sound

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gopxl/beep"
)

// MaxClip bounds how much audio a single render produces.
const MaxClip = 30 * time.Second

// EncodePCM16 drains s into interleaved little-endian signed 16-bit stereo,
// the format Ebiten's audio player reads. Samples are clamped to [-1, 1].
// At most maxSamples frames are read.
func EncodePCM16(s beep.Streamer, maxSamples int) []byte {
	buf := make([][2]float64, 512)
	out := make([]byte, 0, 4*1024)
	frame := make([]byte, 4)
	total := 0
	for total < maxSamples {
		want := len(buf)
		if rem := maxSamples - total; rem < want {
			want = rem
		}
		n, ok := s.Stream(buf[:want])
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(frame[0:], uint16(toInt16(buf[i][0])))
			binary.LittleEndian.PutUint16(frame[2:], uint16(toInt16(buf[i][1])))
			out = append(out, frame...)
		}
		total += n
		if !ok || n == 0 {
			break
		}
	}
	return out
}

// Render encodes s up to MaxClip.
func Render(s beep.Streamer) []byte {
	return EncodePCM16(s, SampleRate.N(MaxClip))
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
