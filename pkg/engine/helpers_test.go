package engine

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"stemdeck/pkg/audio"
)

const testRate = beep.SampleRate(48000)

func testEngine(t *testing.T) (*Engine, *audio.Virtual) {
	t.Helper()

	out := audio.NewVirtual(testRate)
	e := New(out, Config{
		Lookahead:       time.Millisecond,
		PublishInterval: 10 * time.Millisecond,
	}, zerolog.Nop())
	t.Cleanup(func() { e.Close() })
	return e, out
}

// writeWAV renders a sine fixture and returns its path.
func writeWAV(t *testing.T, dir, name string, seconds, amp float64) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	n := int(seconds * float64(testRate))
	enc := gowav.NewEncoder(f, int(testRate), 16, 2, 1)
	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: int(testRate)},
		SourceBitDepth: 16,
	}
	for i := 0; i < n; i++ {
		v := int(amp * 32000 * math.Sin(2*math.Pi*440*float64(i)/float64(testRate)))
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
	return path
}

// loadStems writes one fixture per name and loads them all.
func loadStems(t *testing.T, e *Engine, seconds float64, names ...string) {
	t.Helper()

	dir := t.TempDir()
	sources := make([]StemSource, 0, len(names))
	for _, name := range names {
		sources = append(sources, StemSource{
			Name: name,
			URL:  writeWAV(t, dir, name+".wav", seconds, 0.5),
		})
	}
	if err := e.LoadTracks(context.Background(), sources); err != nil {
		t.Fatalf("LoadTracks: %v", err)
	}
}

func mustPlay(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
}
