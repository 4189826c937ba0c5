package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment
// variables.
type Config struct {
	// Device
	SampleRate    int           // device clock rate
	SpeakerBuffer time.Duration // device buffer length

	// Engine behavior
	Lookahead       time.Duration // seek re-scheduling margin
	PublishInterval time.Duration // throttled state publish rate

	// Stem delivery
	HTTPTimeout time.Duration // per-stem fetch timeout
	CacheDir    string        // download cache location, empty disables

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables with sane
// defaults.
func Load() Config {
	return Config{
		SampleRate:    envInt("STEMDECK_SAMPLE_RATE", 48000),
		SpeakerBuffer: envMillis("STEMDECK_SPEAKER_BUFFER_MS", 100),

		Lookahead:       envMillis("STEMDECK_LOOKAHEAD_MS", 5),
		PublishInterval: envMillis("STEMDECK_PUBLISH_MS", 100),

		HTTPTimeout: time.Duration(envInt("STEMDECK_HTTP_TIMEOUT", 30)) * time.Second,
		CacheDir:    envStr("STEMDECK_CACHE_DIR", ""),

		LogLevel: envStr("STEMDECK_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
