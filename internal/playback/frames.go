// ABOUTME: Frame scheduling for the cursor tick loop
// ABOUTME: Provides a timer-driven scheduler and a func adapter
package playback

import "time"

// DefaultFrameInterval is roughly one display frame at 60 Hz
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler runs fn once on the next frame
type FrameScheduler interface {
	RequestFrame(fn func())
}

// FrameFunc adapts a function to FrameScheduler
type FrameFunc func(fn func())

// RequestFrame calls f(fn)
func (f FrameFunc) RequestFrame(fn func()) {
	f(fn)
}

// TickerFrames schedules frames on a fixed interval timer
type TickerFrames struct {
	interval time.Duration
}

// NewTickerFrames creates a scheduler firing interval after each request
func NewTickerFrames(interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerFrames{interval: interval}
}

// RequestFrame runs fn on its own goroutine after one interval
func (t *TickerFrames) RequestFrame(fn func()) {
	time.AfterFunc(t.interval, fn)
}

// Interval returns the frame interval
func (t *TickerFrames) Interval() time.Duration {
	return t.interval
}
