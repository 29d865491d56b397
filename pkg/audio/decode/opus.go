// ABOUTME: Ogg/Opus audio decoder
// ABOUTME: Decodes Ogg-encapsulated Opus files using libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// Decode converts an Ogg Opus stream to a buffer
func (d *OpusDecoder) Decode(r io.Reader) (*audio.Buffer, audio.Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to read opus data: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return nil, audio.Format{}, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create opus decoder: %w", err)
	}
	defer func() { _ = stream.Close() }()

	out := newPlanar(channels, 0)
	pcm := make([]float32, 5760*channels) // 120ms max frame
	for {
		n, err := stream.ReadFloat32(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, audio.Format{}, fmt.Errorf("opus decode failed: %w", err)
		}
		out.appendInterleaved(pcm[:n*channels])
	}

	format := audio.Format{
		Codec:      "opus",
		SampleRate: opusSampleRate,
		Channels:   channels,
		BitDepth:   16,
	}

	b, err := out.buffer(format.SampleRate)
	if err != nil {
		return nil, audio.Format{}, err
	}
	return b, format, nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+10 > len(data) {
		return 0, fmt.Errorf("missing OpusHead: %w", ErrUnknownFormat)
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("unsupported opus channel count: %d", channels)
	}
	return channels, nil
}
