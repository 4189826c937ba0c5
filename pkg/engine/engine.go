/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package engine drives synchronized multi-stem playback: several
// independently decoded stems that must always sound like one original
// recording. All stems start against one shared reference instant on the
// device clock, keep a common position through pause/resume/seek, and
// expose independently mutable per-stem gain.
package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/rs/zerolog"

	"stemdeck/internal/cache"
	"stemdeck/pkg/audio"
)

// Config carries the engine's tunables. Zero values fall back to the
// defaults below.
type Config struct {
	// Lookahead is the scheduling margin used when re-scheduling on a
	// seek, so new handles never collide with the device clock's
	// current instant. Initial play adds no delay.
	Lookahead time.Duration
	// PublishInterval bounds the rate of continuous position updates.
	// Discrete transitions always publish immediately.
	PublishInterval time.Duration
	// HTTPTimeout bounds a single stem fetch.
	HTTPTimeout time.Duration
	// Cache, when set, is consulted before fetching a stem URL.
	Cache *cache.Cache
}

const (
	defaultLookahead       = 5 * time.Millisecond
	defaultPublishInterval = 100 * time.Millisecond
	defaultHTTPTimeout     = 30 * time.Second
)

// Engine is a session-scoped playback engine. Construct with New, feed
// it stems with LoadTracks, release with Close.
type Engine struct {
	cfg    Config
	log    zerolog.Logger
	out    audio.Output
	clk    clock
	client *http.Client

	mu        sync.Mutex
	tracks    *trackSet
	duration  float64
	master    int
	state     playState
	pausedAt  float64
	ref       float64 // reference instant R: position = clock.now() - ref
	loading   bool
	lastErr   string
	sessionID string
	closed    bool

	// epoch tags every handle with the transition that created it.
	// End-of-track callbacks from handles of an older epoch are stale
	// (their handles were torn down by a later transition) and are
	// ignored. This is the seek guard.
	epoch uint64

	endCh    chan uint64
	loopStop chan struct{}
	loopWG   sync.WaitGroup

	subMu sync.RWMutex
	subs  map[chan Snapshot]struct{}
}

// New creates an engine on top of the given output device. The device
// itself is brought up lazily on the first Play.
func New(out audio.Output, cfg Config, log zerolog.Logger) *Engine {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = defaultLookahead
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = defaultPublishInterval
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return &Engine{
		cfg:    cfg,
		log:    log,
		out:    out,
		clk:    clock{out: out},
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		tracks: newTrackSet(nil),
		master: defaultVolume,
		endCh:  make(chan uint64, 16),
		subs:   make(map[chan Snapshot]struct{}),
	}
}

// Play starts or resumes playback from the current position. Every
// loaded stem gets a fresh handle started against one shared reference
// instant, so the stems stay phase-locked.
func (e *Engine) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrDisposed
	}
	if e.state == statePlaying {
		return nil
	}
	if e.tracks.loadedCount() == 0 {
		e.lastErr = ErrNotReady.Error()
		e.publishLocked()
		return ErrNotReady
	}

	if err := e.out.Resume(ctx); err != nil {
		e.lastErr = err.Error()
		e.publishLocked()
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}

	// Zero added delay on initial play and resume.
	e.scheduleLocked(e.pausedAt, 0)
	e.state = statePlaying
	e.startLoopLocked()
	e.publishLocked()
	e.log.Debug().Float64("pos", e.pausedAt).Msg("playback started")
	return nil
}

// Pause freezes the position and discards every handle.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.state != statePlaying {
		return
	}
	e.pauseLocked()
}

// Stop pauses and rewinds to zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if e.state == statePlaying {
		e.pauseLocked()
	}
	e.pausedAt = 0
	e.state = stateStopped
	e.publishLocked()
}

// Seek moves the position to sec, clamped to [0, duration]. If playing,
// every stem is re-scheduled at the new offset with a small lookahead
// and playback continues; otherwise the engine stays paused/stopped at
// the new position. The new position is published immediately.
func (e *Engine) Seek(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	target := sec
	if target < 0 {
		target = 0
	} else if target > e.duration {
		target = e.duration
	}
	if target != sec {
		e.log.Warn().Float64("requested", sec).Float64("clamped", target).Msg("seek out of range")
	}

	if e.state == statePlaying {
		e.scheduleLocked(target, e.cfg.Lookahead)
	} else {
		// Invalidate any in-flight end callbacks anyway; there should
		// be none while paused, but a stale one must never move us.
		e.bumpEpoch()
		e.out.Clear()
		e.tracks.dropHandles()
	}
	e.pausedAt = target
	e.publishLocked()
}

// Bounce renders the loaded stems through the current fader and mute
// settings into a 16-bit WAV. Playback state is not touched.
func (e *Engine) Bounce(w io.WriteSeeker) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrDisposed
	}
	if e.tracks.loadedCount() == 0 {
		return ErrNotReady
	}

	var streamers []beep.Streamer
	for _, t := range e.tracks.order {
		if !t.loaded {
			continue
		}
		vol := &effects.Volume{
			Streamer: t.buf.Streamer(0, t.buf.Len()),
			Base:     audio.GainBase,
		}
		audio.SetGain(vol, gainCurve(t.volume, t.muted))
		streamers = append(streamers, vol)
	}

	mix := &effects.Volume{Streamer: mixerOf(streamers), Base: audio.GainBase}
	audio.SetGain(mix, gainCurve(e.master, false))
	return audio.Bounce(w, e.out.SampleRate(), e.clk.samples(e.duration), mix)
}

func mixerOf(streamers []beep.Streamer) beep.Streamer {
	mix := &beep.Mixer{}
	mix.Add(streamers...)
	return mix
}

// TrackWaveform returns amplitude peaks for one loaded stem, suitable
// for a UI waveform strip.
func (e *Engine) TrackWaveform(name string, points int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.tracks.get(name)
	if t == nil {
		return nil, ErrUnknownTrack
	}
	if !t.loaded {
		return nil, fmt.Errorf("track %q: %w", name, ErrNotReady)
	}
	return audio.Peaks(t.buf, points), nil
}

// TrackProfile returns level and spectral summary for one loaded stem.
func (e *Engine) TrackProfile(name string) (audio.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.tracks.get(name)
	if t == nil {
		return audio.Profile{}, ErrUnknownTrack
	}
	if !t.loaded {
		return audio.Profile{}, fmt.Errorf("track %q: %w", name, ErrNotReady)
	}
	return audio.Analyze(t.buf), nil
}

// Close releases the engine: playback stops, subscribers are closed,
// the output device is released. The engine is unusable afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.state == statePlaying {
		e.pauseLocked()
	}
	e.bumpEpoch()
	e.out.Clear()
	e.tracks.dropHandles()
	e.mu.Unlock()

	e.loopWG.Wait()

	e.subMu.Lock()
	for ch := range e.subs {
		close(ch)
	}
	e.subs = make(map[chan Snapshot]struct{})
	e.subMu.Unlock()

	return e.out.Close()
}

// scheduleLocked tears down the current handles and starts a fresh,
// phase-locked set at the given offset. All handles are created against
// one reference instant and handed to the output in a single call, so
// per-stem scheduling overhead cannot skew them apart.
func (e *Engine) scheduleLocked(offset float64, lookahead time.Duration) {
	ep := e.bumpEpoch()
	e.out.Clear()
	e.tracks.dropHandles()

	sr := e.out.SampleRate()
	lead := sr.N(lookahead)
	from := e.clk.samples(offset)

	var streamers []beep.Streamer
	for _, t := range e.tracks.order {
		if !t.loaded {
			continue
		}
		start := from
		if start > t.buf.Len() {
			start = t.buf.Len()
		}

		epoch := ep // captured by the end callback below
		parts := make([]beep.Streamer, 0, 3)
		if lead > 0 {
			parts = append(parts, beep.Silence(lead))
		}
		parts = append(parts,
			t.buf.Streamer(start, t.buf.Len()),
			beep.Callback(func() {
				// Runs on the render goroutine; hand the signal to the
				// publisher loop instead of touching engine state here.
				select {
				case e.endCh <- epoch:
				default:
				}
			}),
		)

		vol := &effects.Volume{Streamer: beep.Seq(parts...), Base: audio.GainBase}
		audio.SetGain(vol, gainCurve(t.volume, t.muted))
		t.handle = &handle{vol: vol, epoch: ep}
		streamers = append(streamers, vol)
	}

	e.out.SetMasterGain(gainCurve(e.master, false))
	e.ref = e.clk.now() + lookahead.Seconds() - offset
	e.out.Play(streamers...)
}

// pauseLocked freezes the position, discards every handle and stops the
// publisher loop. Callers decide the durable state that follows.
func (e *Engine) pauseLocked() {
	e.pausedAt = e.clk.position(e.ref, e.duration)
	e.bumpEpoch()
	e.out.Clear()
	e.tracks.dropHandles()
	e.state = statePaused
	e.stopLoopLocked()
	e.publishLocked()
	e.log.Debug().Float64("pos", e.pausedAt).Msg("playback paused")
}

// bumpEpoch advances the handle epoch, marking every existing handle's
// end callback stale. Written under e.mu; read lock-free by callbacks.
func (e *Engine) bumpEpoch() uint64 {
	return atomic.AddUint64(&e.epoch, 1)
}

// currentEpoch is the lock-free read side of the seek guard.
func (e *Engine) currentEpoch() uint64 {
	return atomic.LoadUint64(&e.epoch)
}
