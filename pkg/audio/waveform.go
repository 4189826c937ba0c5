package audio

import (
	"math"

	"github.com/faiface/beep"
)

// DefaultWaveformPoints is the resolution used for UI waveform strips.
const DefaultWaveformPoints = 1000

// Peaks reduces a decoded buffer to a fixed number of amplitude points,
// one byte each (0-255), ready for a UI to draw. Each point is the RMS
// energy of its block, boosted so quiet material still shows shape.
func Peaks(buf *beep.Buffer, points int) []byte {
	if buf == nil || buf.Len() == 0 || points <= 0 {
		return nil
	}

	step := buf.Len() / points
	if step == 0 {
		step = 1
	}

	s := buf.Streamer(0, buf.Len())
	block := make([][2]float64, step)
	out := make([]byte, 0, points)

	for {
		n, ok := s.Stream(block)
		if n == 0 {
			break
		}
		var sum float64
		for i := 0; i < n; i++ {
			m := (block[i][0] + block[i][1]) / 2
			sum += m * m
		}
		rms := math.Sqrt(sum / float64(n))
		out = append(out, byte(math.Min(rms*255.0*5.0, 255.0)))
		if !ok {
			break
		}
	}
	return out
}
