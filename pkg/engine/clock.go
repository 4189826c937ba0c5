package engine

import (
	"stemdeck/pkg/audio"
)

// clock maps between the device's monotonic sample counter and
// engine-relative seconds. Every piece of position arithmetic lives
// here so the controller and the publisher can never disagree on it.
type clock struct {
	out audio.Output
}

// now returns the device clock in seconds.
func (c clock) now() float64 {
	return float64(c.out.Pos()) / float64(c.out.SampleRate())
}

// samples converts a duration in seconds to device samples.
func (c clock) samples(sec float64) int {
	if sec < 0 {
		return 0
	}
	return int(sec * float64(c.out.SampleRate()))
}

// seconds converts a sample count to seconds.
func (c clock) seconds(n int) float64 {
	return float64(n) / float64(c.out.SampleRate())
}

// position derives the playback position from a reference instant ref,
// clamped to [0, duration].
func (c clock) position(ref, duration float64) float64 {
	pos := c.now() - ref
	if pos < 0 {
		return 0
	}
	if pos > duration {
		return duration
	}
	return pos
}
