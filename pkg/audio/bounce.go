package audio

import (
	"fmt"
	"io"

	"github.com/faiface/beep"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bounceBitDepth = 16

// Bounce renders numSamples of the given streamers, mixed together, into
// a 16-bit stereo WAV. The streamers carry their own gain stages; Bounce
// only sums and clamps.
func Bounce(w io.WriteSeeker, sr beep.SampleRate, numSamples int, streamers ...beep.Streamer) error {
	if numSamples <= 0 || len(streamers) == 0 {
		return fmt.Errorf("nothing to bounce")
	}

	mix := &beep.Mixer{}
	mix.Add(streamers...)
	src := beep.Take(numSamples, mix)

	enc := wav.NewEncoder(w, int(sr), bounceBitDepth, 2, 1)

	block := make([][2]float64, 2048)
	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: int(sr)},
		SourceBitDepth: bounceBitDepth,
	}

	for {
		n, ok := src.Stream(block)
		if n == 0 {
			break
		}
		ints.Data = ints.Data[:0]
		for i := 0; i < n; i++ {
			ints.Data = append(ints.Data, clamp16(block[i][0]), clamp16(block[i][1]))
		}
		if err := enc.Write(ints); err != nil {
			return fmt.Errorf("bounce write: %w", err)
		}
		if !ok {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("bounce finalize: %w", err)
	}
	return nil
}

func clamp16(v float64) int {
	s := v * 32767.0
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int(s)
}
