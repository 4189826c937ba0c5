package engine

import (
	"stemdeck/pkg/audio"
)

// gainCurve maps a 0..100 fader percentage to linear gain. The curve is
// quadratic so equal fader steps sound like equal loudness steps; a
// muted stem is a hard zero regardless of its fader.
func gainCurve(percent int, muted bool) float64 {
	if muted || percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	f := float64(percent) / 100.0
	return f * f
}

// SetTrackVolume stores a stem's fader percentage and applies the
// recomputed gain to its live control, if one is playing. Handles are
// never created or torn down here; the value is retained and applied
// whenever the next handle is built.
func (e *Engine) SetTrackVolume(name string, percent int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.tracks.get(name)
	if t == nil {
		return ErrUnknownTrack
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	t.volume = percent
	e.applyTrackGainLocked(t)
	e.publishLocked()
	return nil
}

// SetTrackMuted sets a stem's mute flag through the same
// recompute-and-apply path as the fader.
func (e *Engine) SetTrackMuted(name string, muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.tracks.get(name)
	if t == nil {
		return ErrUnknownTrack
	}
	t.muted = muted
	e.applyTrackGainLocked(t)
	e.publishLocked()
	return nil
}

// ToggleTrackMuted flips a stem's mute flag.
func (e *Engine) ToggleTrackMuted(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.tracks.get(name)
	if t == nil {
		return ErrUnknownTrack
	}
	t.muted = !t.muted
	e.applyTrackGainLocked(t)
	e.publishLocked()
	return nil
}

// SetMasterVolume sets the master fader, applied after the stem mix.
func (e *Engine) SetMasterVolume(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	e.master = percent
	e.out.SetMasterGain(gainCurve(percent, false))
	e.publishLocked()
}

// applyTrackGainLocked writes the stem's effective gain to its live
// volume control under the output lock. No-op while no handle exists.
func (e *Engine) applyTrackGainLocked(t *track) {
	if t.handle == nil {
		return
	}
	e.out.Lock()
	audio.SetGain(t.handle.vol, gainCurve(t.volume, t.muted))
	e.out.Unlock()
}
