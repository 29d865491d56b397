// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the decoded audio types shared by the player.
//
// This package defines:
//   - Format: Describes the encoded source (codec, sample rate, channels, bit depth)
//   - Buffer: A whole file decoded to planar float32 samples, random access
//
// Example:
//
//	buf, err := audio.NewBuffer(44100, [][]float32{left, right})
//	fmt.Println(buf.Duration())
package audio
