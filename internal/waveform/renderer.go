// ABOUTME: Waveform renderer with an interactive playhead cursor
// ABOUTME: Lays out amplitude bars and turns cursor drags into seek events
package waveform

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrInvalidContainer is returned when the render target is missing or empty
var ErrInvalidContainer = errors.New("invalid render container")

// grabRadius is how far from the cursor, in cells, a press still grabs it
const grabRadius = 1.0

// Viewport is the size of the render surface in terminal cells
type Viewport struct {
	Width  int
	Height int
}

// Container is a render target with a known size
type Container interface {
	Viewport() Viewport
}

// Valid reports whether the viewport can hold a drawing
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Viewport lets a bare Viewport act as its own container
func (v Viewport) Viewport() Viewport {
	return v
}

// Bar is one laid-out amplitude bar, vertically centred
type Bar struct {
	X      float64
	Width  float64
	Height float64
}

// Renderer draws a Summary and a playhead, and owns the drag protocol.
//
// Handlers are always called without the renderer's lock held, so a handler
// may call back into the renderer (UpdateCursor) safely.
type Renderer struct {
	mu       sync.Mutex
	duration time.Duration
	vp       Viewport

	summary  Summary
	bars     []Bar
	columns  []float64 // max magnitude per cell column
	rendered bool

	cursorTime time.Duration
	cursorX    float64

	drag *dragSession

	handlers []subscription
	nextID   int

	palette palette
}

// dragSession exists between a press on the cursor and its release
type dragSession struct {
	origin time.Duration
}

type subscription struct {
	id int
	h  Handler
}

// NewRenderer creates a renderer for a track of the given duration
func NewRenderer(duration time.Duration, vp Viewport) (*Renderer, error) {
	if !vp.Valid() {
		return nil, fmt.Errorf("viewport %dx%d: %w", vp.Width, vp.Height, ErrInvalidContainer)
	}
	if duration < 0 {
		duration = 0
	}

	r := &Renderer{
		duration: duration,
		vp:       vp,
	}
	r.palette = newPalette(vp.Height)
	return r, nil
}

// Subscribe registers h for seek events and returns its unsubscribe func
func (r *Renderer) Subscribe(h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.handlers = append(r.handlers, subscription{id: id, h: h})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.handlers {
			if s.id == id {
				r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
				return
			}
		}
	}
}

// Render lays out one bar per summary value across the full width.
// Rendering again replaces the previous layout.
func (r *Renderer) Render(summary Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary = summary
	r.layoutLocked()
	r.rendered = true
	r.cursorX = r.xForLocked(r.cursorTime)
}

// Resize changes the viewport and relayouts the current summary
func (r *Renderer) Resize(vp Viewport) error {
	if !vp.Valid() {
		return fmt.Errorf("viewport %dx%d: %w", vp.Width, vp.Height, ErrInvalidContainer)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if vp == r.vp {
		return nil
	}
	r.vp = vp
	r.palette = newPalette(vp.Height)
	if r.rendered {
		r.layoutLocked()
	}
	r.cursorX = r.xForLocked(r.cursorTime)
	return nil
}

func (r *Renderer) layoutLocked() {
	n := len(r.summary)
	width := float64(r.vp.Width)
	height := float64(r.vp.Height)

	r.bars = r.bars[:0]
	if n > 0 {
		band := width / float64(n)
		for i, v := range r.summary {
			r.bars = append(r.bars, Bar{
				X:      float64(i) * band,
				Width:  band,
				Height: v * height,
			})
		}
	}

	if cap(r.columns) < r.vp.Width {
		r.columns = make([]float64, r.vp.Width)
	}
	r.columns = r.columns[:r.vp.Width]
	for c := range r.columns {
		r.columns[c] = 0
		if n == 0 {
			continue
		}
		lo := c * n / r.vp.Width
		hi := (c + 1) * n / r.vp.Width
		if hi <= lo {
			hi = lo + 1
		}
		for _, v := range r.summary[lo:hi] {
			r.columns[c] = math.Max(r.columns[c], v)
		}
	}
}

// UpdateCursor moves the playhead to position. It does nothing before the
// first Render.
func (r *Renderer) UpdateCursor(position time.Duration) {
	r.mu.Lock()
	if r.rendered {
		r.cursorTime = r.clampLocked(position)
		r.cursorX = r.xForLocked(r.cursorTime)
	}
	r.mu.Unlock()
}

// PointerDown starts a drag session when the press lands on the cursor
func (r *Renderer) PointerDown(x, y float64) {
	r.mu.Lock()
	if !r.rendered || r.drag != nil || !r.onCursorLocked(x, y) {
		r.mu.Unlock()
		return
	}
	r.drag = &dragSession{origin: r.cursorTime}
	r.mu.Unlock()

	r.emit(SeekStart{})
}

// PointerMove previews the dragged position
func (r *Renderer) PointerMove(x, _ float64) {
	r.mu.Lock()
	if r.drag == nil {
		r.mu.Unlock()
		return
	}
	t := r.moveCursorLocked(x)
	r.mu.Unlock()

	r.emit(SeekPreview{Time: t})
}

// PointerUp ends the drag session and commits the released position
func (r *Renderer) PointerUp(x, _ float64) {
	r.mu.Lock()
	if r.drag == nil {
		r.mu.Unlock()
		return
	}
	t := r.moveCursorLocked(x)
	r.drag = nil
	r.mu.Unlock()

	r.emit(SeekCommit{Time: t})
}

// PointerCancel aborts a drag session, committing the position it started from
func (r *Renderer) PointerCancel() {
	r.mu.Lock()
	if r.drag == nil {
		r.mu.Unlock()
		return
	}
	t := r.drag.origin
	r.drag = nil
	r.cursorTime = t
	r.cursorX = r.xForLocked(t)
	r.mu.Unlock()

	r.emit(SeekCommit{Time: t})
}

// Dragging reports whether a drag session is active
func (r *Renderer) Dragging() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drag != nil
}

// CursorX returns the horizontal offset of the playhead
func (r *Renderer) CursorX() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursorX
}

// CursorTime returns the position the playhead shows
func (r *Renderer) CursorTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursorTime
}

// Bars returns a copy of the current layout
func (r *Renderer) Bars() []Bar {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Bar, len(r.bars))
	copy(out, r.bars)
	return out
}

// Viewport returns the current surface size
func (r *Renderer) Viewport() Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vp
}

// Duration returns the track length the renderer maps onto its width
func (r *Renderer) Duration() time.Duration {
	return r.duration
}

func (r *Renderer) onCursorLocked(x, y float64) bool {
	if y < 0 || y >= float64(r.vp.Height) {
		return false
	}
	return math.Abs(x-r.cursorX) <= grabRadius
}

// moveCursorLocked clamps x into the viewport and moves the cursor there
func (r *Renderer) moveCursorLocked(x float64) time.Duration {
	width := float64(r.vp.Width)
	x = math.Max(0, math.Min(width, x))

	t := time.Duration(float64(r.duration) * x / width)
	r.cursorTime = r.clampLocked(t)
	r.cursorX = x
	return r.cursorTime
}

func (r *Renderer) clampLocked(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if t > r.duration {
		return r.duration
	}
	return t
}

func (r *Renderer) xForLocked(t time.Duration) float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(t) * float64(r.vp.Width) / float64(r.duration)
}

func (r *Renderer) emit(e Event) {
	r.mu.Lock()
	handlers := make([]Handler, len(r.handlers))
	for i, s := range r.handlers {
		handlers[i] = s.h
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
