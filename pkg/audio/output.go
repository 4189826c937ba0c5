/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// GainBase is the exponential base used by every live gain control.
const GainBase = 2.0

// Output is the host audio device boundary: a monotonic sample clock plus
// a live signal graph (sources -> master gain -> device). The engine only
// ever talks to the device through this interface, so playback logic can
// run against a real speaker or an offline virtual device.
type Output interface {
	// SampleRate returns the fixed rate of the device clock.
	SampleRate() beep.SampleRate
	// Resume brings the device up if it is suspended. It may block while
	// the platform opens the output and must be called before Play.
	Resume(ctx context.Context) error
	// Play adds streamers to the live graph. All streamers passed in one
	// call start on the same device-clock sample.
	Play(s ...beep.Streamer)
	// Clear drops every live source. The device clock keeps running.
	Clear()
	// SetMasterGain sets the linear gain applied after the source mix.
	SetMasterGain(gain float64)
	// Lock and Unlock serialize external mutation of live streamers
	// (gain changes) against the render goroutine.
	Lock()
	Unlock()
	// Pos returns the number of samples the device clock has advanced
	// since the device came up. Monotonic, never resets.
	Pos() int
	Close() error
}

// SetGain writes a linear gain value to a live volume control, using the
// Silent flag for true zero. Callers mutating a playing control must hold
// the output lock.
func SetGain(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}

// clockStreamer sits at the top of the output chain and counts every
// sample pulled by the device. It never drains, so the clock keeps
// advancing even when the mix below is silent.
type clockStreamer struct {
	inner beep.Streamer
	pos   int64
}

func (c *clockStreamer) Stream(samples [][2]float64) (int, bool) {
	n, _ := c.inner.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	atomic.AddInt64(&c.pos, int64(len(samples)))
	return len(samples), true
}

func (c *clockStreamer) Err() error { return nil }

// Speaker is the real device Output backed by the platform speaker.
// The chain speaker -> clock -> master volume -> mixer is installed once
// on Resume and stays up for the life of the process.
type Speaker struct {
	sr     beep.SampleRate
	buffer time.Duration

	mu     sync.Mutex
	ready  bool
	mix    *beep.Mixer
	master *effects.Volume
	clock  *clockStreamer
}

// NewSpeaker returns an uninitialized speaker output. The device itself
// is opened lazily by Resume.
func NewSpeaker(sr beep.SampleRate, buffer time.Duration) *Speaker {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	return &Speaker{sr: sr, buffer: buffer}
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.sr }

func (s *Speaker) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := speaker.Init(s.sr, s.sr.N(s.buffer)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	s.mix = &beep.Mixer{}
	s.master = &effects.Volume{Streamer: s.mix, Base: GainBase}
	s.clock = &clockStreamer{inner: s.master}
	speaker.Play(s.clock)
	s.ready = true
	return nil
}

func (s *Speaker) Play(streamers ...beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	speaker.Lock()
	s.mix.Add(streamers...)
	speaker.Unlock()
}

func (s *Speaker) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	// Swap in a fresh mixer instead of draining the old one; dropped
	// sources must never fire their end callbacks.
	speaker.Lock()
	s.mix = &beep.Mixer{}
	s.master.Streamer = s.mix
	speaker.Unlock()
}

func (s *Speaker) SetMasterGain(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	speaker.Lock()
	SetGain(s.master, gain)
	speaker.Unlock()
}

func (s *Speaker) Lock()   { speaker.Lock() }
func (s *Speaker) Unlock() { speaker.Unlock() }

func (s *Speaker) Pos() int {
	s.mu.Lock()
	clk := s.clock
	s.mu.Unlock()
	if clk == nil {
		return 0
	}
	return int(atomic.LoadInt64(&clk.pos))
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	speaker.Clear()
	s.ready = false
	return nil
}
