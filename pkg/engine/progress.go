package engine

import (
	"time"
)

// startLoopLocked launches the publisher loop for one playing session.
// The loop owns continuous position updates and natural end-of-track
// detection; discrete transitions publish directly and never wait for
// a tick.
func (e *Engine) startLoopLocked() {
	stop := make(chan struct{})
	e.loopStop = stop
	e.loopWG.Add(1)
	go e.progressLoop(stop)
}

// stopLoopLocked signals the loop to exit. Safe when no loop runs.
func (e *Engine) stopLoopLocked() {
	if e.loopStop != nil {
		close(e.loopStop)
		e.loopStop = nil
	}
}

func (e *Engine) progressLoop(stop <-chan struct{}) {
	defer e.loopWG.Done()

	ticker := time.NewTicker(e.cfg.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case ep := <-e.endCh:
			if e.handleTrackEnd(ep) {
				return
			}
		case <-ticker.C:
			if e.tick() {
				return
			}
		}
	}
}

// tick publishes one throttled position update. Reaching the duration is
// a natural end of track: clamp, pause, stop the loop. Returns true when
// the loop should exit.
func (e *Engine) tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != statePlaying {
		return true
	}
	if e.clk.position(e.ref, e.duration) >= e.duration {
		e.pauseLocked()
		e.log.Debug().Float64("pos", e.pausedAt).Msg("end of track")
		return true
	}
	e.publishLocked()
	return false
}

// handleTrackEnd reacts to a handle's end-of-track callback. Signals
// from any epoch but the current one come from handles that a later
// play/pause/seek already tore down; they are stale and ignored.
// Returns true when the loop should exit.
func (e *Engine) handleTrackEnd(ep uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ep != e.currentEpoch() {
		return false
	}
	if e.state != statePlaying {
		return true
	}
	e.pauseLocked()
	e.log.Debug().Float64("pos", e.pausedAt).Msg("stem drained, auto-pause")
	return true
}
