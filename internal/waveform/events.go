// ABOUTME: Seek events emitted by the renderer's drag protocol
// ABOUTME: Tagged variants SeekStart, SeekPreview and SeekCommit
package waveform

import "time"

// Event is one of SeekStart, SeekPreview or SeekCommit
type Event interface {
	seekEvent()
}

// SeekStart marks the beginning of a scrub
type SeekStart struct{}

// SeekPreview carries an advisory position while dragging
type SeekPreview struct {
	Time time.Duration
}

// SeekCommit carries the final position of a scrub
type SeekCommit struct {
	Time time.Duration
}

func (SeekStart) seekEvent()   {}
func (SeekPreview) seekEvent() {}
func (SeekCommit) seekEvent()  {}

// Handler receives renderer events
type Handler func(Event)
