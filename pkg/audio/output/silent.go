// ABOUTME: Device-less engine implementation
// ABOUTME: Keeps full graph and clock semantics without producing sound
package output

import (
	"context"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	enginesync "github.com/Resonate-Protocol/wavescrub/pkg/sync"
)

// Silent is an Engine without an audio device, for headless use
type Silent struct {
	*graph
}

// NewSilent creates a suspended silent engine
func NewSilent() *Silent {
	return NewSilentWithClock(enginesync.NewClock())
}

// NewSilentWithClock creates a silent engine driven by clock
func NewSilentWithClock(clock *enginesync.Clock) *Silent {
	return &Silent{
		graph: newGraph(clock, func(*audio.Buffer) (voice, error) {
			return silentVoice{}, nil
		}),
	}
}

// Resume starts the clock
func (s *Silent) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.clock.Start()
	return nil
}

// Suspend freezes the clock
func (s *Silent) Suspend(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.clock.Stop()
	return nil
}

// Close marks the engine closed
func (s *Silent) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.clock.Stop()
	return nil
}

type silentVoice struct{}

func (silentVoice) play(time.Duration) error { return nil }
func (silentVoice) stop()                    {}
func (silentVoice) setVolume(float64)        {}
