// ABOUTME: Audio type definitions
// ABOUTME: Defines source formats and decoded, random-access sample buffers
package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrMismatchedChannels is returned when channel slices differ in length
var ErrMismatchedChannels = errors.New("channels have different lengths")

// Format describes the encoded source a Buffer was decoded from
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Buffer represents a fully decoded audio file.
//
// Samples are planar float32 in [-1, 1]. A Buffer is never mutated after
// construction; loading a new file produces a new Buffer.
type Buffer struct {
	SampleRate int
	channels   [][]float32
	frames     int
}

// NewBuffer creates a buffer from planar channel data
func NewBuffer(sampleRate int, channels [][]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("buffer needs at least one channel")
	}

	frames := len(channels[0])
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d: %w",
				i, len(ch), frames, ErrMismatchedChannels)
		}
	}

	return &Buffer{
		SampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
	}, nil
}

// NumChannels returns the channel count
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// Frames returns the number of samples per channel
func (b *Buffer) Frames() int {
	return b.frames
}

// Channel returns the samples of channel i. Callers must not modify it.
func (b *Buffer) Channel(i int) []float32 {
	return b.channels[i]
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	return FramesToDuration(b.frames, b.SampleRate)
}

// SizeBytes returns the in-memory size of the sample data
func (b *Buffer) SizeBytes() uint64 {
	return uint64(b.frames) * uint64(len(b.channels)) * 4
}

// FramesToDuration converts a frame count at sampleRate into a duration
func FramesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

// DurationToFrames converts a duration into a frame index at sampleRate
func DurationToFrames(d time.Duration, sampleRate int) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(sampleRate) / int64(time.Second))
}

// FloatToInt16 converts a float sample to int16 with clipping
func FloatToInt16(sample float32) int16 {
	if sample >= 1 {
		return 32767
	}
	if sample <= -1 {
		return -32768
	}
	return int16(sample * 32767)
}

// Int16ToFloat converts an int16 sample to float in [-1, 1)
func Int16ToFloat(sample int16) float32 {
	return float32(sample) / 32768
}

// IntToFloat converts an integer PCM sample of the given bit depth to float
func IntToFloat(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(int64(1) << uint(bitDepth-1))
	return float32(float64(sample) / scale)
}
