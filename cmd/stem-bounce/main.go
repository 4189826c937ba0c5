/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

// stem-bounce renders a stem manifest to a mixed WAV file without
// opening an audio device.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/faiface/beep"
	"github.com/rs/zerolog"

	"stemdeck/internal/cache"
	"stemdeck/internal/config"
	"stemdeck/internal/manifest"
	"stemdeck/pkg/audio"
	"stemdeck/pkg/engine"
)

func main() {
	manifestPath := flag.String("manifest", "", "stem manifest (yaml)")
	outPath := flag.String("o", "mix.wav", "output wav file")
	master := flag.Int("master", 100, "master fader 0-100")
	mutes := flag.String("mute", "", "comma separated stems to mute")
	vols := flag.String("vol", "", "per stem faders, name=pct comma separated")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: stem-bounce -manifest <file.yaml> [-o mix.wav]")
		os.Exit(2)
	}

	cfg := config.Load()
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)

	if err := run(cfg, log, *manifestPath, *outPath, *master, *mutes, *vols); err != nil {
		log.Fatal().Err(err).Msg("bounce failed")
	}
}

func run(cfg config.Config, log zerolog.Logger, manifestPath, outPath string, master int, mutes, vols string) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	engCfg := engine.Config{HTTPTimeout: cfg.HTTPTimeout}
	if cfg.CacheDir != "" {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			return err
		}
		engCfg.Cache = c
	}

	out := audio.NewVirtual(beep.SampleRate(cfg.SampleRate))
	eng := engine.New(out, engCfg, log)
	defer eng.Close()

	sources := make([]engine.StemSource, 0, len(m.Stems))
	for _, s := range m.Stems {
		sources = append(sources, engine.StemSource{Name: s.Name, URL: s.URL})
	}
	if err := eng.LoadTracks(context.Background(), sources); err != nil {
		return err
	}
	for _, t := range eng.TrackStates() {
		if !t.Loaded {
			log.Warn().Str("stem", t.Name).Str("error", t.Error).Msg("stem skipped")
		}
	}

	eng.SetMasterVolume(master)
	for _, name := range splitList(mutes) {
		if err := eng.SetTrackMuted(name, true); err != nil {
			return err
		}
	}
	for _, pair := range splitList(vols) {
		name, pctStr, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("bad -vol entry %q, want name=pct", pair)
		}
		pct, err := strconv.Atoi(pctStr)
		if err != nil {
			return fmt.Errorf("bad -vol entry %q: %w", pair, err)
		}
		if err := eng.SetTrackVolume(name, pct); err != nil {
			return err
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := eng.Bounce(f); err != nil {
		return err
	}
	snap := eng.State()
	log.Info().Str("out", outPath).Float64("seconds", snap.Duration).Msg("bounce complete")
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
