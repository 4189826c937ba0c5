package engine

import (
	"math"
	"testing"
	"time"

	"stemdeck/pkg/audio"
)

func TestClockConversions(t *testing.T) {
	c := clock{out: audio.NewVirtual(testRate)}

	if got := c.samples(1.0); got != int(testRate) {
		t.Errorf("samples(1.0) = %d, want %d", got, int(testRate))
	}
	if got := c.samples(-1.0); got != 0 {
		t.Errorf("samples(-1.0) = %d, want 0", got)
	}
	if got := c.seconds(int(testRate) / 2); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("seconds(%d) = %v, want 0.5", int(testRate)/2, got)
	}
}

func TestClockNowFollowsDevice(t *testing.T) {
	out := audio.NewVirtual(testRate)
	c := clock{out: out}

	if got := c.now(); got != 0 {
		t.Errorf("now = %v before any advance", got)
	}
	out.Advance(250 * time.Millisecond)
	if got := c.now(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("now = %v, want 0.25", got)
	}
}

func TestClockPositionClamps(t *testing.T) {
	out := audio.NewVirtual(testRate)
	c := clock{out: out}
	out.Advance(time.Second)

	// Reference ahead of the clock: position clamps to zero.
	if got := c.position(2.0, 10.0); got != 0 {
		t.Errorf("position = %v, want 0", got)
	}
	// Clock far past the track: position clamps to the duration.
	if got := c.position(0, 0.5); got != 0.5 {
		t.Errorf("position = %v, want 0.5", got)
	}
	// In range: plain difference.
	if got := c.position(0.25, 10.0); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("position = %v, want 0.75", got)
	}
}
