package audio

import (
	"context"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// Virtual is an Output with no device behind it. Its clock advances only
// when Advance pulls samples through the graph, which makes playback
// fully deterministic: headless mixdown and tests drive it by hand.
type Virtual struct {
	sr beep.SampleRate

	// ResumeErr, when set, is returned by Resume. Simulates a device
	// that fails to come up.
	ResumeErr error

	mu     sync.Mutex
	mix    *beep.Mixer
	master *effects.Volume
	pos    int
}

// NewVirtual returns a virtual output with the graph already installed.
func NewVirtual(sr beep.SampleRate) *Virtual {
	mix := &beep.Mixer{}
	return &Virtual{
		sr:     sr,
		mix:    mix,
		master: &effects.Volume{Streamer: mix, Base: GainBase},
	}
}

func (v *Virtual) SampleRate() beep.SampleRate { return v.sr }

func (v *Virtual) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.ResumeErr
}

func (v *Virtual) Play(streamers ...beep.Streamer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mix.Add(streamers...)
}

func (v *Virtual) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mix = &beep.Mixer{}
	v.master.Streamer = v.mix
}

func (v *Virtual) SetMasterGain(gain float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	SetGain(v.master, gain)
}

func (v *Virtual) Lock()   { v.mu.Lock() }
func (v *Virtual) Unlock() { v.mu.Unlock() }

func (v *Virtual) Pos() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *Virtual) Close() error {
	v.Clear()
	return nil
}

// Advance pulls d worth of samples through the graph, advancing the
// clock exactly as a running device would.
func (v *Virtual) Advance(d time.Duration) {
	v.AdvanceSamples(v.sr.N(d))
}

// AdvanceSamples pulls n samples through the graph.
func (v *Virtual) AdvanceSamples(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	scratch := make([][2]float64, 512)
	for n > 0 {
		chunk := len(scratch)
		if n < chunk {
			chunk = n
		}
		sn, _ := v.master.Stream(scratch[:chunk])
		for i := sn; i < chunk; i++ {
			scratch[i] = [2]float64{}
		}
		v.pos += chunk
		n -= chunk
	}
}

var _ Output = (*Virtual)(nil)
var _ Output = (*Speaker)(nil)
