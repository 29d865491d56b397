// ABOUTME: Connection graph shared by engine implementations
// ABOUTME: Tracks source -> gain -> destination routing and effective volume
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	enginesync "github.com/Resonate-Protocol/wavescrub/pkg/sync"
)

// voice is the device-specific half of a source
type voice interface {
	play(offset time.Duration) error
	stop()
	setVolume(v float64)
}

// graph implements the node bookkeeping of Engine
type graph struct {
	mu       sync.Mutex
	clock    *enginesync.Clock
	dest     *destination
	newVoice func(buf *audio.Buffer) (voice, error)
	closed   bool
}

func newGraph(clock *enginesync.Clock, newVoice func(buf *audio.Buffer) (voice, error)) *graph {
	return &graph{
		clock:    clock,
		dest:     &destination{},
		newVoice: newVoice,
	}
}

type destination struct{}

func (d *destination) Disconnect() {}

type source struct {
	g       *graph
	voice   voice
	gain    *gain
	started bool
	stopped bool
}

type gain struct {
	g       *graph
	value   float64
	routed  bool
	sources map[*source]struct{}
}

// CreateSource creates a single-use playback unit for buf
func (g *graph) CreateSource(buf *audio.Buffer) (Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}

	v, err := g.newVoice(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return &source{g: g, voice: v}, nil
}

// CreateGain creates a gain node with unity gain
func (g *graph) CreateGain() Gain {
	return &gain{g: g, value: 1, sources: make(map[*source]struct{})}
}

// Connect routes from into to
func (g *graph) Connect(from, to Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch f := from.(type) {
	case *source:
		dst, ok := to.(*gain)
		if !ok || dst.g != g || f.g != g {
			return fmt.Errorf("source must connect to a gain of the same engine: %w", ErrBadConnection)
		}
		if f.gain != nil {
			delete(f.gain.sources, f)
		}
		f.gain = dst
		dst.sources[f] = struct{}{}
		f.voice.setVolume(f.volumeLocked())
		return nil

	case *gain:
		if to != Node(g.dest) || f.g != g {
			return fmt.Errorf("gain must connect to the destination: %w", ErrBadConnection)
		}
		f.routed = true
		f.applyLocked()
		return nil
	}

	return fmt.Errorf("cannot connect %T: %w", from, ErrBadConnection)
}

// Destination is the device output
func (g *graph) Destination() Node {
	return g.dest
}

// CurrentTime is the monotonic engine clock
func (g *graph) CurrentTime() time.Duration {
	return g.clock.Now()
}

func (s *source) Start(offset time.Duration) error {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()

	if s.started || s.stopped {
		return ErrSourceUsed
	}
	s.started = true
	s.voice.setVolume(s.volumeLocked())
	return s.voice.play(offset)
}

func (s *source) Stop() error {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	if s.started {
		s.voice.stop()
	}
	return nil
}

func (s *source) Disconnect() {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()

	if s.gain != nil {
		delete(s.gain.sources, s)
		s.gain = nil
	}
	s.voice.setVolume(0)
}

// volumeLocked is the gain reaching the device, 0 when not routed
func (s *source) volumeLocked() float64 {
	if s.gain == nil || !s.gain.routed {
		return 0
	}
	return s.gain.value
}

func (n *gain) SetGain(value float64) {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	n.value = value
	n.applyLocked()
}

func (n *gain) Gain() float64 {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	return n.value
}

func (n *gain) Disconnect() {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	n.routed = false
	n.applyLocked()
}

func (n *gain) applyLocked() {
	for s := range n.sources {
		s.voice.setVolume(s.volumeLocked())
	}
}
