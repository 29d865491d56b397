// ABOUTME: Configuration validation
// ABOUTME: Collects per-section errors into one joined error
package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.Waveform.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("waveform: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks AudioConfig for errors.
func (c *AudioConfig) Validate() error {
	switch c.Backend {
	case BackendOto, BackendSilent:
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be oto or silent)", c.Backend)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	return nil
}

// Validate checks WaveformConfig for errors.
func (c *WaveformConfig) Validate() error {
	if c.Buckets < 0 {
		return errors.New("buckets must be non-negative")
	}
	if c.Height < 1 {
		return errors.New("height must be at least 1")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	if c.FrameMs < 1 || c.FrameMs > 1000 {
		return errors.New("frame_ms must be between 1 and 1000")
	}
	if c.SeekStepMs < 1 {
		return errors.New("seek_step_ms must be positive")
	}
	return nil
}
