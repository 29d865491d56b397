// ABOUTME: Package transport is the playback surface the UI talks to
// ABOUTME: Documents sessions and how scrubs become seeks
// Package transport owns one Session per loaded file: its buffer, amplitude
// summary, renderer and playback clock. Dragging the renderer's cursor pauses
// playback, previews positions while dragging and seeks on release, resuming
// if playback was running when the drag began.
//
// Example:
//
//	t, err := transport.New(transport.Config{Engine: engine, Volume: 0.8})
//	if err != nil {
//		return err
//	}
//	if err := t.Init(ctx, buf, waveform.Viewport{Width: 80, Height: 12}); err != nil {
//		return err
//	}
//	defer t.Close(ctx)
//	return t.Play(ctx)
package transport
