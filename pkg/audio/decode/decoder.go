// ABOUTME: Decoder interface definition and format detection
// ABOUTME: Picks a codec by magic bytes and decodes whole files to buffers
package decode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

// ErrUnknownFormat is returned when no decoder recognises the input
var ErrUnknownFormat = errors.New("unknown audio format")

const headerSize = 36

// Decoder decodes a complete encoded file into a random-access buffer
type Decoder interface {
	// Decode reads r to the end and returns the decoded audio
	Decode(r io.Reader) (*audio.Buffer, audio.Format, error)
}

// New returns the decoder for codec ("mp3", "flac", "wav", "opus")
func New(codec string) (Decoder, error) {
	switch codec {
	case "mp3":
		return &MP3Decoder{}, nil
	case "flac":
		return &FLACDecoder{}, nil
	case "wav":
		return &WAVDecoder{}, nil
	case "opus":
		return &OpusDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}

// Detect determines the codec from the first bytes of a file
func Detect(header []byte) string {
	switch {
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return "wav"
	case len(header) >= 4 && string(header[:4]) == "fLaC":
		return "flac"
	case len(header) >= 36 && string(header[:4]) == "OggS" && string(header[28:36]) == "OpusHead":
		return "opus"
	case len(header) >= 3 && string(header[:3]) == "ID3":
		return "mp3"
	case len(header) >= 2 && header[0] == 0xFF && (header[1]&0xE0) == 0xE0:
		return "mp3"
	}
	return ""
}

// DecodeReader sniffs the codec and decodes r
func DecodeReader(r io.Reader) (*audio.Buffer, audio.Format, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	header, err := br.Peek(headerSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, audio.Format{}, fmt.Errorf("error reading magic bytes: %w", err)
	}

	codec := Detect(header)
	if codec == "" {
		return nil, audio.Format{}, ErrUnknownFormat
	}

	dec, err := New(codec)
	if err != nil {
		return nil, audio.Format{}, err
	}

	log.Printf("Using %s decoder", codec)
	return dec.Decode(br)
}

// DecodeFile opens and decodes the file at path
func DecodeFile(path string) (*audio.Buffer, audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf, format, err := DecodeReader(f)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return buf, format, nil
}

// planar collects decoded frames per channel
type planar struct {
	channels [][]float32
}

func newPlanar(channels, capacity int) *planar {
	p := &planar{channels: make([][]float32, channels)}
	for i := range p.channels {
		p.channels[i] = make([]float32, 0, capacity)
	}
	return p
}

// appendInterleaved appends interleaved float samples
func (p *planar) appendInterleaved(samples []float32) {
	n := len(p.channels)
	for i := 0; i+n <= len(samples); i += n {
		for ch := 0; ch < n; ch++ {
			p.channels[ch] = append(p.channels[ch], samples[i+ch])
		}
	}
}

func (p *planar) buffer(sampleRate int) (*audio.Buffer, error) {
	return audio.NewBuffer(sampleRate, p.channels)
}
