/*
 * Copyright (c) 2026 Stemdeck.
 * This software is part of the Stemdeck project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/faiface/beep"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"stemdeck/internal/cache"
	"stemdeck/internal/config"
	"stemdeck/pkg/audio"
	"stemdeck/pkg/engine"
)

const (
	appName      = "stemdeck"
	versionMajor = 1
	versionMinor = 0
)

// player bundles the engine with the console session state.
type player struct {
	eng *engine.Engine
	log zerolog.Logger

	mu           sync.Mutex
	manifestPath string
	watcher      *fsnotify.Watcher
}

func main() {
	cfg := config.Load()

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)

	engCfg := engine.Config{
		Lookahead:       cfg.Lookahead,
		PublishInterval: cfg.PublishInterval,
		HTTPTimeout:     cfg.HTTPTimeout,
	}
	if cfg.CacheDir != "" {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot open stem cache")
		}
		engCfg.Cache = c
	}

	out := audio.NewSpeaker(beep.SampleRate(cfg.SampleRate), cfg.SpeakerBuffer)
	p := &player{
		eng: engine.New(out, engCfg, log),
		log: log,
	}
	defer p.close()

	go p.printTransitions()

	fmt.Printf("\n%s V.%d.%d\n", appName, versionMajor, versionMinor)
	fmt.Println(`Type "help" for commands, "quit" to exit`)
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{Prompt: "stemdeck> "})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open console")
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C / Ctrl-D
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		p.dispatch(strings.Fields(line))
	}
}

// printTransitions watches the engine's published snapshots and prints
// discrete state changes. Continuous position ticks stay quiet.
func (p *player) printTransitions() {
	var last engine.Snapshot
	for snap := range p.eng.Subscribe() {
		switch {
		case snap.Loading != last.Loading:
			if snap.Loading {
				fmt.Println("[loading stems...]")
			} else {
				fmt.Printf("[stems ready, %.1fs]\n", snap.Duration)
			}
		case snap.Playing != last.Playing:
			if snap.Playing {
				fmt.Printf("[playing from %.1fs]\n", snap.Position)
			} else {
				fmt.Printf("[paused at %.1fs]\n", snap.Position)
			}
		case snap.LastError != last.LastError && snap.LastError != "":
			fmt.Printf("[error: %s]\n", snap.LastError)
		}
		last = snap
	}
}

func (p *player) close() {
	p.mu.Lock()
	if p.watcher != nil {
		p.watcher.Close()
	}
	p.mu.Unlock()
	if err := p.eng.Close(); err != nil {
		p.log.Warn().Err(err).Msg("engine close")
	}
}
