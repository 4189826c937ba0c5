package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.SampleRate)
	}
	if cfg.SpeakerBuffer != 100*time.Millisecond {
		t.Errorf("SpeakerBuffer = %v, want 100ms", cfg.SpeakerBuffer)
	}
	if cfg.Lookahead != 5*time.Millisecond {
		t.Errorf("Lookahead = %v, want 5ms", cfg.Lookahead)
	}
	if cfg.PublishInterval != 100*time.Millisecond {
		t.Errorf("PublishInterval = %v, want 100ms", cfg.PublishInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.CacheDir != "" {
		t.Errorf("CacheDir = %q, want empty", cfg.CacheDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STEMDECK_SAMPLE_RATE", "44100")
	t.Setenv("STEMDECK_LOOKAHEAD_MS", "20")
	t.Setenv("STEMDECK_PUBLISH_MS", "250")
	t.Setenv("STEMDECK_CACHE_DIR", "/tmp/stems")
	t.Setenv("STEMDECK_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.Lookahead != 20*time.Millisecond {
		t.Errorf("Lookahead = %v, want 20ms", cfg.Lookahead)
	}
	if cfg.PublishInterval != 250*time.Millisecond {
		t.Errorf("PublishInterval = %v, want 250ms", cfg.PublishInterval)
	}
	if cfg.CacheDir != "/tmp/stems" {
		t.Errorf("CacheDir = %q, want /tmp/stems", cfg.CacheDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("STEMDECK_SAMPLE_RATE", "not-a-number")

	if got := Load().SampleRate; got != 48000 {
		t.Errorf("SampleRate = %d, want fallback 48000", got)
	}
}
