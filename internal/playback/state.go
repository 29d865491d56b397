// ABOUTME: Transport state and playback errors
// ABOUTME: Defines Stopped/Playing/Paused and the clock's sentinel errors
package playback

import "errors"

var (
	// ErrNoBufferLoaded is returned by Play before a buffer is loaded
	ErrNoBufferLoaded = errors.New("no audio buffer loaded")

	// ErrEngineStateViolation means the clock's state and the engine graph
	// disagree. It is a bug, not a user error.
	ErrEngineStateViolation = errors.New("engine state violation")
)

// State is the transport state
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}
