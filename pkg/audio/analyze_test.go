package audio

import (
	"math"
	"testing"
)

func TestAnalyzeSine(t *testing.T) {
	// Frequency sits exactly on an FFT bin so the centroid estimate is
	// not smeared by leakage.
	freq := 75.0 * float64(testRate) / float64(analyzeFFTSize)
	buf := sineBuffer(testRate, freq, 0.5, int(testRate))

	p := Analyze(buf)

	if math.Abs(p.Peak-0.5) > 0.01 {
		t.Errorf("Peak = %v, want about 0.5", p.Peak)
	}
	wantRMS := 0.5 / math.Sqrt2
	if math.Abs(p.RMS-wantRMS) > 0.01 {
		t.Errorf("RMS = %v, want about %v", p.RMS, wantRMS)
	}
	if math.Abs(p.Centroid-freq) > 50 {
		t.Errorf("Centroid = %v Hz, want about %v Hz", p.Centroid, freq)
	}
}

func TestAnalyzeCentroidOrdersStems(t *testing.T) {
	bass := Analyze(sineBuffer(testRate, 80, 0.5, int(testRate)))
	lead := Analyze(sineBuffer(testRate, 2000, 0.5, int(testRate)))

	if bass.Centroid >= lead.Centroid {
		t.Errorf("bass centroid %v not below lead centroid %v", bass.Centroid, lead.Centroid)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if p := Analyze(nil); p != (Profile{}) {
		t.Errorf("Analyze(nil) = %+v, want zero profile", p)
	}
}
