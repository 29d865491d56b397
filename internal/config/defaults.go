// ABOUTME: Default configuration values
// ABOUTME: Fills zero values left by the config file
package config

const (
	BackendOto    = "oto"
	BackendSilent = "silent"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Backend: BackendOto,
			Volume:  80,
		},
		Waveform: WaveformConfig{
			Buckets: 0,
			Height:  12,
		},
		TUI: TUIConfig{
			FrameMs:    16,
			SeekStepMs: 5000,
		},
		Log: LogConfig{
			File: "wavescrub.log",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
//
// Volume 0 is indistinguishable from unset, so silence is configured with
// muted = true instead.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Audio
	if c.Audio.Backend == "" {
		c.Audio.Backend = d.Audio.Backend
	}
	if c.Audio.Volume == 0 {
		c.Audio.Volume = d.Audio.Volume
	}

	// Waveform
	if c.Waveform.Height == 0 {
		c.Waveform.Height = d.Waveform.Height
	}

	// TUI
	if c.TUI.FrameMs == 0 {
		c.TUI.FrameMs = d.TUI.FrameMs
	}
	if c.TUI.SeekStepMs == 0 {
		c.TUI.SeekStepMs = d.TUI.SeekStepMs
	}

	// Log
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
}
