// ABOUTME: Package waveform summarises audio and draws an interactive waveform
// ABOUTME: Provides the summariser, the renderer and its seek event stream
// Package waveform turns a decoded audio buffer into an amplitude summary and
// draws it in the terminal with a draggable playhead.
//
// The renderer never touches audio output. Dragging the cursor produces a
// sequence of events for one scrub: SeekStart, zero or more SeekPreview and
// exactly one SeekCommit.
//
// Example:
//
//	summary, err := waveform.Summarize(buf)
//	if err != nil {
//		return err
//	}
//	r, err := waveform.NewRenderer(buf.Duration(), waveform.Viewport{Width: 80, Height: 12})
//	if err != nil {
//		return err
//	}
//	unsubscribe := r.Subscribe(func(e waveform.Event) {
//		if c, ok := e.(waveform.SeekCommit); ok {
//			log.Printf("Seek to %v", c.Time)
//		}
//	})
//	defer unsubscribe()
//	r.Render(summary)
//	fmt.Println(r.View())
package waveform
