// ABOUTME: Resampler package for sample rate conversion
// ABOUTME: Provides linear interpolation resampling of decoded buffers
// Package resample converts decoded buffers between sample rates.
//
// The output engine opens one device at a fixed rate, so files decoded at a
// different rate are resampled once, before playback starts.
//
// Example:
//
//	r := resample.New(44100, 48000)
//	out, err := r.Buffer(buf)
package resample
