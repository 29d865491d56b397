// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE files using beep's wav streamer
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/gopxl/beep/v2/wav"
)

// WAVDecoder decodes PCM WAV audio
type WAVDecoder struct{}

// Decode converts a WAV stream to a buffer
func (d *WAVDecoder) Decode(r io.Reader) (*audio.Buffer, audio.Format, error) {
	streamer, beepFormat, err := wav.Decode(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create wav decoder: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	format := audio.Format{
		Codec:      "wav",
		SampleRate: int(beepFormat.SampleRate),
		Channels:   beepFormat.NumChannels,
		BitDepth:   beepFormat.Precision * 8,
	}

	// beep always streams stereo pairs; mono sources are duplicated
	channels := format.Channels
	if channels > 2 {
		channels = 2
	}

	capacity := streamer.Len()
	out := newPlanar(channels, capacity)

	samples := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out.channels[ch] = append(out.channels[ch], float32(samples[i][ch]))
			}
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, audio.Format{}, fmt.Errorf("wav decode error: %w", err)
	}

	b, err := out.buffer(format.SampleRate)
	if err != nil {
		return nil, audio.Format{}, err
	}
	return b, format, nil
}
