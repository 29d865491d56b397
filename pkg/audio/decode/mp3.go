// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to planar float buffers
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// Decode converts an MP3 stream to a buffer
func (d *MP3Decoder) Decode(r io.Reader) (*audio.Buffer, audio.Format, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	capacity := 0
	if length := decoder.Length(); length > 0 {
		capacity = int(length / (2 * mp3Channels))
	}
	out := newPlanar(mp3Channels, capacity)

	buf := make([]byte, 8192)
	frame := make([]float32, len(buf)/2)
	for {
		n, err := decoder.Read(buf)
		if n > 0 {
			// Convert bytes to int16 then to float
			numSamples := n / 2
			for i := 0; i < numSamples; i++ {
				frame[i] = audio.Int16ToFloat(int16(binary.LittleEndian.Uint16(buf[i*2:])))
			}
			out.appendInterleaved(frame[:numSamples])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, audio.Format{}, fmt.Errorf("mp3 decode error: %w", err)
		}
	}

	format := audio.Format{
		Codec:      "mp3",
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   16,
	}

	b, err := out.buffer(format.SampleRate)
	if err != nil {
		return nil, audio.Format{}, err
	}
	return b, format, nil
}
