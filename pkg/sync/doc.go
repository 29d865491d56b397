// ABOUTME: Engine clock package
// ABOUTME: Provides a monotonic, suspendable clock for audio engines
// Package sync provides the time base of an audio engine.
//
// The clock behaves like a sound card's sample clock: it only advances
// while the engine is running and holds still while it is suspended.
//
// Example:
//
//	clock := sync.NewClock()
//	clock.Start()
//	now := clock.Now()
package sync
