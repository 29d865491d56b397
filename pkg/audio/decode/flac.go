// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files frame by frame using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// Decode converts a FLAC stream to a buffer
func (d *FLACDecoder) Decode(r io.Reader) (*audio.Buffer, audio.Format, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	defer func() { _ = stream.Close() }()

	info := stream.Info
	format := audio.Format{
		Codec:      "flac",
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}

	out := newPlanar(format.Channels, int(info.NSamples))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, audio.Format{}, fmt.Errorf("flac decode error: %w", err)
		}

		for ch, sub := range frame.Subframes {
			if ch >= format.Channels {
				break
			}
			for _, s := range sub.Samples {
				out.channels[ch] = append(out.channels[ch], audio.IntToFloat(s, format.BitDepth))
			}
		}
	}

	b, err := out.buffer(format.SampleRate)
	if err != nil {
		return nil, audio.Format{}, err
	}
	return b, format, nil
}
