package engine

import "errors"

var (
	// ErrNotInitialized means the host audio device could not be
	// brought up for playback.
	ErrNotInitialized = errors.New("audio device not initialized")

	// ErrNotReady means play was requested before any stem finished
	// loading.
	ErrNotReady = errors.New("no loaded tracks")

	// ErrLoad means a whole load pass settled without a single stem
	// decoding successfully. Individual stem failures are recorded on
	// the track instead and never abort the load.
	ErrLoad = errors.New("all stems failed to load")

	// ErrUnknownTrack means a per-track operation named a stem that is
	// not in the current set.
	ErrUnknownTrack = errors.New("unknown track")

	// ErrDisposed means the engine was already closed.
	ErrDisposed = errors.New("engine disposed")
)
