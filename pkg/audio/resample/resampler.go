// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Converts decoded buffers to the output engine's fixed rate
package resample

import "github.com/Resonate-Protocol/wavescrub/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Channel resamples one channel using linear interpolation
func (r *Resampler) Channel(input []float32) []float32 {
	if len(input) == 0 {
		return nil
	}
	if r.inputRate == r.outputRate {
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}

	output := make([]float32, r.OutputFrames(len(input)))
	for i := range output {
		// Calculate which input frame we need
		pos := float64(i) * r.ratio
		idx := int(pos)
		if idx >= len(input)-1 {
			output[i] = input[len(input)-1]
			continue
		}

		frac := float32(pos - float64(idx))
		output[i] = input[idx]*(1-frac) + input[idx+1]*frac
	}

	return output
}

// Buffer resamples every channel of buf to the output rate
func (r *Resampler) Buffer(buf *audio.Buffer) (*audio.Buffer, error) {
	if buf.SampleRate == r.outputRate {
		return buf, nil
	}

	channels := make([][]float32, buf.NumChannels())
	for ch := range channels {
		channels[ch] = r.Channel(buf.Channel(ch))
	}
	return audio.NewBuffer(r.outputRate, channels)
}

// OutputFrames calculates how many output frames will be produced from input frames
func (r *Resampler) OutputFrames(inputFrames int) int {
	return int(int64(inputFrames) * int64(r.outputRate) / int64(r.inputRate))
}
