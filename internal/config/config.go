// ABOUTME: Configuration loading
// ABOUTME: Reads TOML from standard locations and applies env overrides
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: $XDG_CONFIG_HOME/wavescrub/config.toml, ~/.config/wavescrub/config.toml, ~/.wavescrubrc
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	paths := []string{
		filepath.Join(xdgConfig, "wavescrub", "config.toml"),
		filepath.Join(home, ".wavescrubrc"),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Audio
	if v := os.Getenv("WAVESCRUB_AUDIO_BACKEND"); v != "" {
		cfg.Audio.Backend = v
	}
	if v := os.Getenv("WAVESCRUB_AUDIO_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Audio.Volume = i
		}
	}
	if v := os.Getenv("WAVESCRUB_AUDIO_MUTED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Muted = b
		}
	}

	// Waveform
	if v := os.Getenv("WAVESCRUB_WAVEFORM_BUCKETS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Waveform.Buckets = i
		}
	}
	if v := os.Getenv("WAVESCRUB_WAVEFORM_HEIGHT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Waveform.Height = i
		}
	}

	// TUI
	if v := os.Getenv("WAVESCRUB_TUI_FRAME_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.FrameMs = i
		}
	}
	if v := os.Getenv("WAVESCRUB_TUI_SEEK_STEP_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.SeekStepMs = i
		}
	}

	// Log
	if v := os.Getenv("WAVESCRUB_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// Gain returns the configured volume as a gain in [0, 1]
func (c *AudioConfig) Gain() float64 {
	if c.Muted {
		return 0
	}
	return float64(c.Volume) / 100
}

// FrameInterval returns the cursor frame interval
func (c *TUIConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameMs) * time.Millisecond
}

// SeekStep returns the keyboard seek step
func (c *TUIConfig) SeekStep() time.Duration {
	return time.Duration(c.SeekStepMs) * time.Millisecond
}
