package engine

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

const defaultVolume = 100

// StemSource names one stem and where to fetch it. Order matters: the
// engine's duration comes from the first source that decodes
// successfully, in the order given here.
type StemSource struct {
	Name string
	URL  string
}

// handle is one live, one-shot playback unit: the stem's gain control
// wrapped around a streamer scheduled on the device. A handle exists
// only while its segment is audibly scheduled and is tagged with the
// epoch that created it; it is always replaced whole, never reused.
type handle struct {
	vol   *effects.Volume
	epoch uint64
}

// track is one stem and its mutable runtime state.
type track struct {
	name string
	url  string

	// Tag metadata, best effort.
	title  string
	artist string

	buf     *beep.Buffer // immutable once decoded
	loaded  bool
	loadErr error

	volume int
	muted  bool
	handle *handle
}

// trackSet owns the current stems in caller order plus a name index.
// A load replaces the whole set; there is no incremental add.
type trackSet struct {
	order []*track
	byKey map[string]*track
}

func newTrackSet(sources []StemSource) *trackSet {
	ts := &trackSet{byKey: make(map[string]*track, len(sources))}
	for _, src := range sources {
		if _, dup := ts.byKey[src.Name]; dup {
			continue
		}
		t := &track{name: src.Name, url: src.URL, volume: defaultVolume}
		ts.order = append(ts.order, t)
		ts.byKey[src.Name] = t
	}
	return ts
}

func (ts *trackSet) get(name string) *track {
	return ts.byKey[name]
}

func (ts *trackSet) at(i int) *track {
	return ts.order[i]
}

func (ts *trackSet) len() int {
	return len(ts.order)
}

func (ts *trackSet) loadedCount() int {
	n := 0
	for _, t := range ts.order {
		if t.loaded {
			n++
		}
	}
	return n
}

// dropHandles discards every live handle. The scheduled sources behind
// them are cleared from the output separately.
func (ts *trackSet) dropHandles() {
	for _, t := range ts.order {
		t.handle = nil
	}
}
