/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fsnotify/fsnotify"

	"stemdeck/internal/manifest"
	"stemdeck/pkg/engine"
)

func (p *player) dispatch(parts []string) {
	switch parts[0] {
	case "help":
		printHelp()
	case "load":
		if len(parts) < 2 {
			fmt.Println("usage: load <manifest.yaml>")
			return
		}
		p.cmdLoad(parts[1])
	case "play":
		if err := p.eng.Play(context.Background()); err != nil {
			fmt.Printf("play: %v\n", err)
		}
	case "pause":
		p.eng.Pause()
	case "stop":
		p.eng.Stop()
	case "seek":
		sec, ok := argFloat(parts, 1)
		if !ok {
			fmt.Println("usage: seek <seconds>")
			return
		}
		p.eng.Seek(sec)
	case "vol":
		name, pct, ok := argNameInt(parts)
		if !ok {
			fmt.Println("usage: vol <track> <0-100>")
			return
		}
		if err := p.eng.SetTrackVolume(name, pct); err != nil {
			fmt.Printf("vol: %v\n", err)
		}
	case "mute":
		if len(parts) < 2 {
			fmt.Println("usage: mute <track>")
			return
		}
		if err := p.eng.ToggleTrackMuted(parts[1]); err != nil {
			fmt.Printf("mute: %v\n", err)
		}
	case "master":
		pct, ok := argInt(parts, 1)
		if !ok {
			fmt.Println("usage: master <0-100>")
			return
		}
		p.eng.SetMasterVolume(pct)
	case "tracks":
		p.cmdTracks()
	case "wave":
		if len(parts) < 2 {
			fmt.Println("usage: wave <track>")
			return
		}
		p.cmdWave(parts[1])
	case "info":
		if len(parts) < 2 {
			fmt.Println("usage: info <track>")
			return
		}
		p.cmdInfo(parts[1])
	case "bounce":
		if len(parts) < 2 {
			fmt.Println("usage: bounce <out.wav>")
			return
		}
		p.cmdBounce(parts[1])
	case "pos":
		snap := p.eng.State()
		fmt.Printf("%.2f / %.2f s\n", snap.Position, snap.Duration)
	default:
		fmt.Printf("unknown command %q, try help\n", parts[0])
	}
}

func printHelp() {
	fmt.Println(`commands:
  load <manifest.yaml>   load a stem set (watches the file for changes)
  play | pause | stop
  seek <seconds>
  vol <track> <0-100>    set a stem fader
  mute <track>           toggle a stem mute
  master <0-100>         set the master fader
  tracks                 list stems and their state
  wave <track>           print a waveform strip
  info <track>           print level/spectrum profile
  bounce <out.wav>       render the mix to a WAV file
  pos                    print position
  quit`)
}

func (p *player) cmdLoad(path string) {
	m, err := manifest.Load(path)
	if err != nil {
		fmt.Printf("load: %v\n", err)
		return
	}

	sources := make([]engine.StemSource, 0, len(m.Stems))
	for _, s := range m.Stems {
		sources = append(sources, engine.StemSource{Name: s.Name, URL: s.URL})
	}

	if err := p.eng.LoadTracks(context.Background(), sources); err != nil {
		fmt.Printf("load: %v\n", err)
		return
	}
	fmt.Printf("loaded %q (%d stems)\n", m.Name, len(m.Stems))
	p.watchManifest(path)
}

// watchManifest hot-reloads the stem set whenever the manifest changes
// on disk.
func (p *player) watchManifest(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.manifestPath = path
	if p.watcher != nil {
		return // one watcher is enough; reload picks the current path
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		p.log.Warn().Err(err).Msg("manifest watch unavailable")
		return
	}
	if err := w.Add(path); err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("manifest watch failed")
		w.Close()
		return
	}
	p.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				p.mu.Lock()
				current := p.manifestPath
				p.mu.Unlock()
				p.log.Info().Str("path", current).Msg("manifest changed, reloading")
				p.cmdLoad(current)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.log.Warn().Err(err).Msg("manifest watch error")
			}
		}
	}()
}

func (p *player) cmdTracks() {
	states := p.eng.TrackStates()
	if len(states) == 0 {
		fmt.Println("no stems loaded")
		return
	}
	for _, t := range states {
		status := "ready"
		if !t.Loaded {
			status = "failed"
			if t.Error != "" {
				status = "failed: " + t.Error
			}
		}
		mute := " "
		if t.Muted {
			mute = "M"
		}
		title := t.Title
		if title == "" {
			title = "-"
		}
		fmt.Printf("  [%s] %-12s vol=%3d  %-8s %s\n", mute, t.Name, t.Volume, status, title)
	}
}

var waveGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func (p *player) cmdWave(name string) {
	peaks, err := p.eng.TrackWaveform(name, 64)
	if err != nil {
		fmt.Printf("wave: %v\n", err)
		return
	}
	var line []rune
	for _, v := range peaks {
		line = append(line, waveGlyphs[int(v)*(len(waveGlyphs)-1)/255])
	}
	fmt.Printf("  %s |%s|\n", name, string(line))
}

func (p *player) cmdInfo(name string) {
	prof, err := p.eng.TrackProfile(name)
	if err != nil {
		fmt.Printf("info: %v\n", err)
		return
	}
	fmt.Printf("  %s: rms=%.3f peak=%.3f centroid=%.0f Hz\n", name, prof.RMS, prof.Peak, prof.Centroid)
}

func (p *player) cmdBounce(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("bounce: %v\n", err)
		return
	}
	defer f.Close()

	if err := p.eng.Bounce(f); err != nil {
		if errors.Is(err, engine.ErrNotReady) {
			fmt.Println("bounce: load stems first")
			return
		}
		fmt.Printf("bounce: %v\n", err)
		return
	}
	fmt.Printf("bounced mix to %s\n", path)
}

func argInt(parts []string, idx int) (int, bool) {
	if len(parts) <= idx {
		return 0, false
	}
	v, err := strconv.Atoi(parts[idx])
	if err != nil {
		return 0, false
	}
	return v, true
}

func argFloat(parts []string, idx int) (float64, bool) {
	if len(parts) <= idx {
		return 0, false
	}
	v, err := strconv.ParseFloat(parts[idx], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func argNameInt(parts []string) (string, int, bool) {
	if len(parts) < 3 {
		return "", 0, false
	}
	v, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], v, true
}
