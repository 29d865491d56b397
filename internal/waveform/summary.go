// ABOUTME: Amplitude summary of a decoded buffer
// ABOUTME: Reduces channel 0 to normalized per-bucket mean magnitudes
package waveform

import (
	"errors"
	"math"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

// ErrEmptyBuffer is returned when a buffer has no samples
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Summary is an ordered sequence of magnitudes in [0, 1]
type Summary []float64

// Summarize buckets channel 0 into one bucket per sample-rate unit.
//
// A silent buffer yields an all-zero summary.
func Summarize(buf *audio.Buffer) (Summary, error) {
	if buf == nil {
		return nil, ErrEmptyBuffer
	}
	return SummarizeBuckets(buf, buf.SampleRate)
}

// SummarizeBuckets is Summarize with an explicit bucket count.
// Buffers shorter than buckets get one bucket per frame.
func SummarizeBuckets(buf *audio.Buffer, buckets int) (Summary, error) {
	if buf == nil || buf.Frames() == 0 || buf.NumChannels() == 0 {
		return nil, ErrEmptyBuffer
	}
	if buckets <= 0 {
		buckets = buf.SampleRate
	}

	raw := buf.Channel(0)
	if buckets > len(raw) {
		buckets = len(raw)
	}
	blockSize := len(raw) / buckets

	out := make(Summary, buckets)
	peak := 0.0
	for i := range out {
		block := raw[i*blockSize : (i+1)*blockSize]
		sum := 0.0
		for _, s := range block {
			sum += math.Abs(float64(s))
		}
		out[i] = sum / float64(blockSize)
		if out[i] > peak {
			peak = out[i]
		}
	}

	if peak == 0 {
		return out, nil
	}
	for i := range out {
		out[i] /= peak
	}
	return out, nil
}

// Peak returns the largest magnitude
func (s Summary) Peak() float64 {
	peak := 0.0
	for _, v := range s {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Mean returns the average magnitude
func (s Summary) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}
