// ABOUTME: Package playback keeps the playhead in step with audio output
// ABOUTME: Documents the transport state machine and its tick loop
// Package playback implements the transport state machine (Stopped, Playing,
// Paused) over an output.Engine and a per-frame cursor tick loop.
//
// Example:
//
//	clock, err := playback.New(playback.Config{
//		Engine: engine,
//		Cursor: renderer,
//		Volume: 0.8,
//	})
//	if err != nil {
//		return err
//	}
//	if err := clock.Load(buf); err != nil {
//		return err
//	}
//	if err := clock.Play(ctx); err != nil {
//		return err
//	}
//	_ = clock.SeekTo(30 * time.Second)
//	_ = clock.Pause(ctx, false)
package playback
