package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const testRate = beep.SampleRate(48000)

// sine is a finite stereo sine streamer.
type sine struct {
	freq, amp float64
	sr        beep.SampleRate
	n, pos    int
}

func (s *sine) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && s.pos < s.n {
		v := s.amp * math.Sin(2*math.Pi*s.freq*float64(s.pos)/float64(s.sr))
		samples[filled] = [2]float64{v, v}
		s.pos++
		filled++
	}
	return filled, filled > 0
}

func (s *sine) Err() error { return nil }

func sineBuffer(sr beep.SampleRate, freq, amp float64, n int) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(&sine{freq: freq, amp: amp, sr: sr, n: n})
	return buf
}

// wavBytes renders a sine tone to an in-memory 16-bit stereo WAV.
func wavBytes(t *testing.T, sr int, freq, amp float64, n int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	enc := gowav.NewEncoder(f, sr, 16, 2, 1)
	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sr},
		SourceBitDepth: 16,
	}
	for i := 0; i < n; i++ {
		v := int(amp * 32000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr)))
		ints.Data = append(ints.Data, v, v)
	}
	if err := enc.Write(ints); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}
