// ABOUTME: Audio engine interface definition
// ABOUTME: Schedulable buffer sources, gain nodes and a suspendable clock
package output

import (
	"context"
	"errors"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

var (
	// ErrSourceUsed is returned when a source is started twice or after Stop
	ErrSourceUsed = errors.New("source can only be started once")

	// ErrBadConnection is returned for edges the graph does not support
	ErrBadConnection = errors.New("unsupported connection")

	// ErrClosed is returned by a closed engine
	ErrClosed = errors.New("engine closed")
)

// Node is a vertex of the engine's connection graph
type Node interface {
	// Disconnect removes every outgoing connection of the node
	Disconnect()
}

// Source plays one buffer once, starting at an offset
type Source interface {
	Node

	// Start begins playback at offset into the buffer
	Start(offset time.Duration) error

	// Stop ends playback. Stopping an unstarted source prevents it from starting.
	Stop() error
}

// Gain scales everything connected into it
type Gain interface {
	Node

	SetGain(value float64)
	Gain() float64
}

// Engine represents an audio output device
type Engine interface {
	// CreateSource creates a single-use playback unit for buf
	CreateSource(buf *audio.Buffer) (Source, error)

	// CreateGain creates a gain node with unity gain
	CreateGain() Gain

	// Connect routes from into to (source -> gain, gain -> destination)
	Connect(from, to Node) error

	// Destination is the device output
	Destination() Node

	// Resume starts the device and its clock
	Resume(ctx context.Context) error

	// Suspend pauses the device and freezes its clock
	Suspend(ctx context.Context) error

	// CurrentTime is the monotonic engine clock
	CurrentTime() time.Duration

	// Close releases output resources
	Close() error
}
