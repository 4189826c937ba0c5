/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/google/uuid"

	"stemdeck/pkg/audio"
)

type loadResult struct {
	buf    *beep.Buffer
	title  string
	artist string
	err    error
}

// LoadTracks fetches and decodes every stem concurrently, replacing the
// previous set wholesale (an implicit stop). A failed stem is recorded
// on its track and never aborts its siblings; LoadTracks returns once
// every attempt has settled. The engine duration is fixed by the first
// source that decodes successfully, in the order given.
func (e *Engine) LoadTracks(ctx context.Context, sources []StemSource) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrDisposed
	}

	// Implicit stop: discard every previous track and handle.
	e.bumpEpoch()
	e.out.Clear()
	e.tracks = newTrackSet(sources)
	e.duration = 0
	e.pausedAt = 0
	e.state = stateStopped
	e.stopLoopLocked()
	e.loading = true
	e.lastErr = ""
	session := uuid.NewString()
	e.sessionID = session
	e.publishLocked()
	// Fetch per deduped track, not per source: a dropped duplicate must
	// not shift the result indices.
	count := e.tracks.len()
	fetchSources := make([]StemSource, count)
	for i := 0; i < count; i++ {
		t := e.tracks.at(i)
		fetchSources[i] = StemSource{Name: t.name, URL: t.url}
	}
	e.mu.Unlock()

	e.log.Info().Str("session", session).Int("stems", count).Msg("loading stems")

	results := make([]loadResult, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int, src StemSource) {
			defer wg.Done()
			results[i] = e.fetchAndDecode(ctx, src)
		}(i, fetchSources[i])
	}
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sessionID != session {
		// Superseded by a later load; drop these results silently.
		return nil
	}

	loaded := 0
	for i, r := range results {
		t := e.tracks.at(i)
		if r.err != nil {
			t.loadErr = r.err
			e.log.Warn().Str("session", session).Str("track", t.name).Err(r.err).Msg("stem failed to load")
			continue
		}
		t.buf = r.buf
		t.loaded = true
		t.title = r.title
		t.artist = r.artist
		if e.duration == 0 {
			e.duration = e.clk.seconds(r.buf.Len())
		}
		loaded++
	}

	e.loading = false
	if loaded == 0 {
		e.lastErr = ErrLoad.Error()
		e.publishLocked()
		return ErrLoad
	}

	e.publishLocked()
	e.log.Info().Str("session", session).Int("loaded", loaded).Float64("duration", e.duration).Msg("stems ready")
	return nil
}

func (e *Engine) fetchAndDecode(ctx context.Context, src StemSource) loadResult {
	data, err := e.fetch(ctx, src.URL)
	if err != nil {
		return loadResult{err: fmt.Errorf("fetch: %w", err)}
	}

	res := loadResult{}
	// Tag probe is best effort; stems are often bare PCM with no tags.
	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		res.title = meta.Title()
		res.artist = meta.Artist()
	}

	buf, err := audio.Decode(data, src.URL, e.out.SampleRate())
	if err != nil {
		return loadResult{err: err}
	}
	res.buf = buf
	return res
}

// fetch resolves a stem URL to bytes. Plain paths and file:// URLs read
// the local filesystem; everything else goes through HTTP with the
// download cache in front when one is configured.
func (e *Engine) fetch(ctx context.Context, url string) ([]byte, error) {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		return os.ReadFile(path)
	}
	if !strings.Contains(url, "://") {
		return os.ReadFile(url)
	}

	if e.cfg.Cache != nil {
		if data, ok := e.cfg.Cache.Get(url); ok {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if e.cfg.Cache != nil {
		if err := e.cfg.Cache.Put(url, data); err != nil {
			e.log.Warn().Err(err).Msg("stem cache write failed")
		}
	}
	return data, nil
}
