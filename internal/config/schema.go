// ABOUTME: Configuration file schema
// ABOUTME: TOML sections for audio output, waveform, TUI and logging
package config

// Config is the root configuration structure.
type Config struct {
	Audio    AudioConfig    `toml:"audio"`
	Waveform WaveformConfig `toml:"waveform"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// AudioConfig holds output settings.
type AudioConfig struct {
	Backend string `toml:"backend"` // "oto" or "silent"
	Volume  int    `toml:"volume"`  // percent
	Muted   bool   `toml:"muted"`
}

// WaveformConfig holds summary and drawing settings.
type WaveformConfig struct {
	Buckets int `toml:"buckets"` // 0 for one per sample-rate unit
	Height  int `toml:"height"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	FrameMs    int `toml:"frame_ms"`
	SeekStepMs int `toml:"seek_step_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	File string `toml:"file"`
}
