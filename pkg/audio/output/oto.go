// ABOUTME: Oto-based audio engine implementation
// ABOUTME: Plays buffer sources through one oto context with per-source volume
package output

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/resample"
	enginesync "github.com/Resonate-Protocol/wavescrub/pkg/sync"
	"github.com/ebitengine/oto/v3"
)

// oto only allows one context per process
var (
	otoOnce    sync.Once
	otoShared  *oto.Context
	otoErr     error
	otoOptions oto.NewContextOptions
)

// Oto engine implementation using oto library
type Oto struct {
	*graph
	otoCtx     *oto.Context
	sampleRate int
	channels   int

	cacheMu sync.Mutex
	cacheIn *audio.Buffer
	cacheTo *audio.Buffer
}

// NewOto opens the audio device. The engine starts suspended.
func NewOto(sampleRate, channels int) (*Oto, error) {
	otoOnce.Do(func() {
		otoOptions = oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(&otoOptions)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan
		otoShared = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}

	// If format changed, we can't reinitialize oto. Keep the existing format.
	if otoOptions.SampleRate != sampleRate || otoOptions.ChannelCount != channels {
		log.Printf("Warning: oto already initialized at %dHz %dch, ignoring %dHz %dch",
			otoOptions.SampleRate, otoOptions.ChannelCount, sampleRate, channels)
	}

	o := &Oto{
		otoCtx:     otoShared,
		sampleRate: otoOptions.SampleRate,
		channels:   otoOptions.ChannelCount,
	}
	o.graph = newGraph(enginesync.NewClock(), o.newVoice)

	// Match the engine clock: nothing plays until Resume
	if err := o.otoCtx.Suspend(); err != nil {
		return nil, fmt.Errorf("failed to suspend oto context: %w", err)
	}

	log.Printf("Audio output initialized: %dHz, %d channels", o.sampleRate, o.channels)
	return o, nil
}

// Resume starts the device and its clock
func (o *Oto) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}
	o.clock.Start()
	return nil
}

// Suspend pauses the device and freezes its clock
func (o *Oto) Suspend(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.clock.Stop()
	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	return nil
}

// Close releases output resources. The shared oto context stays suspended.
func (o *Oto) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.clock.Stop()
	return o.otoCtx.Suspend()
}

// SampleRate returns the device rate
func (o *Oto) SampleRate() int {
	return o.sampleRate
}

func (o *Oto) newVoice(buf *audio.Buffer) (voice, error) {
	converted, err := o.convert(buf)
	if err != nil {
		return nil, err
	}
	return &otoVoice{
		ctx:    o.otoCtx,
		reader: newPCMReader(converted, o.channels),
	}, nil
}

// convert resamples buf to the device rate, caching the last result
func (o *Oto) convert(buf *audio.Buffer) (*audio.Buffer, error) {
	if buf.SampleRate == o.sampleRate {
		return buf, nil
	}

	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	if o.cacheIn == buf {
		return o.cacheTo, nil
	}

	log.Printf("Resampling %dHz -> %dHz", buf.SampleRate, o.sampleRate)
	out, err := resample.New(buf.SampleRate, o.sampleRate).Buffer(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to resample: %w", err)
	}
	o.cacheIn, o.cacheTo = buf, out
	return out, nil
}

// otoVoice drives one oto player
type otoVoice struct {
	ctx    *oto.Context
	reader *pcmReader
	player *oto.Player
	volume float64
}

func (v *otoVoice) play(offset time.Duration) error {
	if err := v.reader.SeekTime(offset); err != nil {
		return err
	}
	v.player = v.ctx.NewPlayer(v.reader)
	v.player.SetVolume(v.volume)
	v.player.Play()
	return nil
}

func (v *otoVoice) stop() {
	if v.player == nil {
		return
	}
	v.player.Pause()
	if err := v.player.Close(); err != nil {
		log.Printf("Error closing player: %v", err)
	}
	v.player = nil
}

func (v *otoVoice) setVolume(volume float64) {
	v.volume = volume
	if v.player != nil {
		v.player.SetVolume(volume)
	}
}
