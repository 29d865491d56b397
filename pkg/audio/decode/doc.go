// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC, Opus
// Package decode turns audio files into fully decoded buffers.
//
// Supports: WAV (PCM), MP3, FLAC, Ogg Opus
//
// Every decoder reads its input to the end and returns an audio.Buffer with
// planar float32 samples, ready for random access by the waveform and the
// playback engine.
//
// Example:
//
//	buf, format, err := decode.DecodeFile("song.flac")
package decode
