package audio

import (
	"math"
	"math/cmplx"

	"github.com/faiface/beep"
	"github.com/mjibson/go-dsp/fft"
)

const analyzeFFTSize = 8192

// Profile summarizes a stem for display and fader suggestions. It is
// informational only; nothing in the playback path consumes it.
type Profile struct {
	// RMS is the mean signal level over the whole stem, 0..1.
	RMS float64
	// Peak is the largest absolute sample value, 0..1.
	Peak float64
	// Centroid is the spectral centroid in Hz, taken from a window in
	// the middle of the stem. Roughly: low for bass stems, high for
	// vocals and cymbals.
	Centroid float64
}

// Analyze computes a Profile for a decoded buffer.
func Analyze(buf *beep.Buffer) Profile {
	if buf == nil || buf.Len() == 0 {
		return Profile{}
	}

	mono := monoSamples(buf)

	var p Profile
	var sum float64
	for _, v := range mono {
		sum += v * v
		if a := math.Abs(v); a > p.Peak {
			p.Peak = a
		}
	}
	p.RMS = math.Sqrt(sum / float64(len(mono)))
	p.Centroid = centroid(mono, buf.Format().SampleRate)
	return p
}

func monoSamples(buf *beep.Buffer) []float64 {
	s := buf.Streamer(0, buf.Len())
	block := make([][2]float64, 1024)
	mono := make([]float64, 0, buf.Len())
	for {
		n, ok := s.Stream(block)
		for i := 0; i < n; i++ {
			mono = append(mono, (block[i][0]+block[i][1])/2)
		}
		if !ok || n == 0 {
			break
		}
	}
	return mono
}

// centroid runs one FFT over a window from the middle of the stem, where
// the arrangement is usually densest.
func centroid(mono []float64, sr beep.SampleRate) float64 {
	size := analyzeFFTSize
	if len(mono) < size {
		size = len(mono)
	}
	if size < 2 {
		return 0
	}
	start := (len(mono) - size) / 2
	spectrum := fft.FFTReal(mono[start : start+size])

	binHz := float64(sr) / float64(size)
	var num, den float64
	for i := 1; i < size/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		num += float64(i) * binHz * mag
		den += mag
	}
	if den == 0 {
		return 0
	}
	return num / den
}
