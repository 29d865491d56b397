// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Engine interface with oto and silent implementations
// Package output provides the audio engine the playback clock drives.
//
// An Engine exposes a small node graph (source -> gain -> destination),
// single-use buffer sources started at an offset, resume/suspend, and a
// monotonic clock that only advances while the engine runs.
//
// Example:
//
//	eng, err := output.NewOto(48000, 2)
//	src, err := eng.CreateSource(buf)
//	gain := eng.CreateGain()
//	_ = eng.Connect(src, gain)
//	_ = eng.Connect(gain, eng.Destination())
//	_ = eng.Resume(ctx)
//	_ = src.Start(0)
package output
