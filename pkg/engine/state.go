package engine

// playState is the controller's durable state. Seeking is a transient
// guard inside one call, never a durable state.
type playState int

const (
	stateStopped playState = iota
	statePaused
	statePlaying
)

// Snapshot is the published engine state. It is derived from track and
// clock state at publish time, never stored authoritatively.
type Snapshot struct {
	Playing   bool
	Position  float64 // seconds, always within [0, Duration]
	Duration  float64 // seconds, fixed by the first decoded stem
	Loading   bool
	LastError string
	SessionID string // identifies the load that produced the current set
}

// TrackState is the published per-stem state.
type TrackState struct {
	Name   string
	Title  string
	Artist string
	Loaded bool
	Muted  bool
	Volume int
	Error  string
}

// Subscribe registers a state listener. Snapshots are delivered on a
// buffered channel with non-blocking sends; a slow consumer misses
// intermediate snapshots rather than stalling the engine.
func (e *Engine) Subscribe() <-chan Snapshot {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	ch := make(chan Snapshot, 16)
	e.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (e *Engine) Unsubscribe(ch <-chan Snapshot) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for sub := range e.subs {
		if sub == ch {
			delete(e.subs, sub)
			close(sub)
			break
		}
	}
}

// State returns the current snapshot.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// TrackStates returns the per-stem states in load order.
func (e *Engine) TrackStates() []TrackState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]TrackState, 0, e.tracks.len())
	for _, t := range e.tracks.order {
		st := TrackState{
			Name:   t.name,
			Title:  t.title,
			Artist: t.artist,
			Loaded: t.loaded,
			Muted:  t.muted,
			Volume: t.volume,
		}
		if t.loadErr != nil {
			st.Error = t.loadErr.Error()
		}
		out = append(out, st)
	}
	return out
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Playing:   e.state == statePlaying,
		Position:  e.positionLocked(),
		Duration:  e.duration,
		Loading:   e.loading,
		LastError: e.lastErr,
		SessionID: e.sessionID,
	}
}

func (e *Engine) positionLocked() float64 {
	if e.state == statePlaying {
		return e.clk.position(e.ref, e.duration)
	}
	return e.pausedAt
}

// publishLocked pushes the current snapshot to every subscriber without
// blocking. Discrete transitions call it directly so observers never
// wait for the next publisher tick.
func (e *Engine) publishLocked() {
	snap := e.snapshotLocked()

	e.subMu.RLock()
	for ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	e.subMu.RUnlock()
}
