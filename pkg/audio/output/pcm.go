// ABOUTME: Interleaved 16-bit PCM view over a planar buffer
// ABOUTME: Feeds oto players and supports seeking by frame
package output

import (
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

// pcmReader reads buf as interleaved int16 little-endian with the given
// channel count. Mono is duplicated, extra channels are dropped.
type pcmReader struct {
	buf       *audio.Buffer
	channels  int
	frameSize int64
	pos       int64 // byte offset
}

func newPCMReader(buf *audio.Buffer, channels int) *pcmReader {
	return &pcmReader{
		buf:       buf,
		channels:  channels,
		frameSize: int64(channels * 2),
	}
}

func (r *pcmReader) size() int64 {
	return int64(r.buf.Frames()) * r.frameSize
}

// Read implements io.Reader
func (r *pcmReader) Read(p []byte) (int, error) {
	if r.pos >= r.size() {
		return 0, io.EOF
	}

	n := 0
	for len(p)-n >= int(r.frameSize) && r.pos < r.size() {
		frame := int(r.pos / r.frameSize)
		for ch := 0; ch < r.channels; ch++ {
			src := ch
			if src >= r.buf.NumChannels() {
				src = r.buf.NumChannels() - 1
			}
			s := audio.FloatToInt16(r.buf.Channel(src)[frame])
			binary.LittleEndian.PutUint16(p[n:], uint16(s))
			n += 2
		}
		r.pos += r.frameSize
	}
	return n, nil
}

// Seek implements io.Seeker, aligning to whole frames
func (r *pcmReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.size() + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	if abs > r.size() {
		abs = r.size()
	}
	r.pos = abs - abs%r.frameSize
	return r.pos, nil
}

// SeekTime positions the reader at offset into the buffer
func (r *pcmReader) SeekTime(offset time.Duration) error {
	frame := audio.DurationToFrames(offset, r.buf.SampleRate)
	_, err := r.Seek(int64(frame)*r.frameSize, io.SeekStart)
	return err
}
