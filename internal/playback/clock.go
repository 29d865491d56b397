// ABOUTME: Playback clock and transport state machine
// ABOUTME: Maps engine time to the playhead across play, pause and seek
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/output"
)

// DefaultEngineTimeout bounds one interactive play or pause
const DefaultEngineTimeout = 2 * time.Second

// Cursor displays the playhead
type Cursor interface {
	UpdateCursor(position time.Duration)
}

// Config configures a Clock
type Config struct {
	Engine output.Engine
	Frames FrameScheduler // defaults to TickerFrames at DefaultFrameInterval
	Cursor Cursor         // optional

	// Volume is applied to every playback session, in [0, 1]
	Volume float64

	// OnFinished runs after playback reaches the end of the buffer
	OnFinished func()
}

// Clock owns the transport state and the engine graph for one buffer.
//
// While Playing, startedAt is the engine time at which logical position 0
// would have played, so position = engineNow - startedAt. Otherwise
// pausedAt is authoritative.
//
// State changes are committed under mu before any engine Resume or Suspend
// runs. Each change bumps gen; ticks and queued engine calls carrying an
// older gen do nothing. Engine calls run one at a time in commit order.
type Clock struct {
	mu sync.Mutex

	engine     output.Engine
	frames     FrameScheduler
	cursor     Cursor
	onFinished func()

	buf      *audio.Buffer
	duration time.Duration
	gain     output.Gain
	source   output.Source
	volume   float64

	state     State
	pausedAt  time.Duration
	startedAt time.Duration
	gen       uint64

	// engine call sequencing
	turn      *sync.Cond
	tickets   uint64
	serving   uint64
	abandoned map[uint64]struct{}
}

// New creates a stopped clock with no buffer loaded
func New(cfg Config) (*Clock, error) {
	if cfg.Engine == nil {
		return nil, errors.New("clock needs an audio engine")
	}
	if cfg.Frames == nil {
		cfg.Frames = NewTickerFrames(DefaultFrameInterval)
	}

	c := &Clock{
		engine:     cfg.Engine,
		frames:     cfg.Frames,
		cursor:     cfg.Cursor,
		onFinished: cfg.OnFinished,
		volume:     clampVolume(cfg.Volume),
		abandoned:  make(map[uint64]struct{}),
	}
	c.turn = sync.NewCond(&c.mu)
	return c, nil
}

// Load replaces the buffer, stopping any active playback
func (c *Clock) Load(buf *audio.Buffer) error {
	if buf == nil {
		return fmt.Errorf("load: %w", ErrNoBufferLoaded)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSourceLocked()
	if c.gain != nil {
		c.gain.Disconnect()
	}

	gain := c.engine.CreateGain()
	gain.SetGain(c.volume)
	if err := c.engine.Connect(gain, c.engine.Destination()); err != nil {
		c.buf = nil
		c.gain = nil
		return fmt.Errorf("failed to route gain: %w", err)
	}

	c.buf = buf
	c.duration = buf.Duration()
	c.gain = gain
	c.state = Stopped
	c.pausedAt = 0
	c.gen++
	c.updateCursorLocked(0)
	return nil
}

// Play starts playback from the paused position. Playing again while
// already Playing does nothing.
func (c *Clock) Play(ctx context.Context) error {
	c.mu.Lock()
	if c.buf == nil {
		c.mu.Unlock()
		return ErrNoBufferLoaded
	}
	if c.state == Playing {
		c.mu.Unlock()
		return nil
	}
	if c.source != nil {
		c.mu.Unlock()
		return fmt.Errorf("source active while %s: %w", c.state, ErrEngineStateViolation)
	}

	prevState, from := c.state, c.pausedAt
	if err := c.startSourceLocked(from); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = Playing
	c.gen++
	gen := c.gen
	ticket := c.takeTicketLocked()
	c.mu.Unlock()

	log.Printf("Playback started at %v", from)
	c.frames.RequestFrame(func() { c.tick(gen) })

	if err := c.runEngine(ctx, ticket, gen, c.engine.Resume); err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.stopSourceLocked()
			c.state = prevState
			c.pausedAt = from
			c.gen++
			c.updateCursorLocked(from)
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to resume engine: %w", err)
	}
	return nil
}

// Pause stops playback. With reset the position returns to 0 and the
// clock becomes Stopped, whether or not it was playing.
func (c *Clock) Pause(ctx context.Context, reset bool) error {
	c.mu.Lock()
	if c.state != Playing {
		if reset {
			c.pausedAt = 0
			c.state = Stopped
			c.updateCursorLocked(0)
		}
		c.mu.Unlock()
		return nil
	}
	if c.source == nil {
		c.mu.Unlock()
		return fmt.Errorf("playing without a source: %w", ErrEngineStateViolation)
	}

	pos := c.positionLocked()
	c.stopSourceLocked()
	if reset {
		c.pausedAt = 0
		c.state = Stopped
	} else {
		c.pausedAt = pos
		c.state = Paused
	}
	state := c.state
	c.gen++
	gen := c.gen
	c.updateCursorLocked(c.pausedAt)
	ticket := c.takeTicketLocked()
	c.mu.Unlock()

	log.Printf("Playback %s at %v", state, pos)

	if err := c.runEngine(ctx, ticket, gen, c.engine.Suspend); err != nil {
		return fmt.Errorf("failed to suspend engine: %w", err)
	}
	return nil
}

// SeekTo moves the playhead to t, clamped to the buffer. While Playing the
// source is replaced in place, so no intermediate position is ever shown.
// A stopped clock moved off 0 becomes Paused; Stopped always sits at 0.
func (c *Clock) SeekTo(t time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = c.clampLocked(t)
	if c.state != Playing {
		c.pausedAt = t
		if c.state == Stopped && t > 0 {
			c.state = Paused
			c.gen++
		}
		c.updateCursorLocked(t)
		return nil
	}
	if c.source == nil {
		return fmt.Errorf("playing without a source: %w", ErrEngineStateViolation)
	}

	c.stopSourceLocked()
	if err := c.startSourceLocked(t); err != nil {
		// Leave a consistent paused state behind
		c.pausedAt = t
		c.state = Paused
		c.gen++
		c.updateCursorLocked(t)
		return err
	}
	c.updateCursorLocked(t)
	return nil
}

// PreviewSeek shows t on the cursor without touching playback
func (c *Clock) PreviewSeek(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCursorLocked(c.clampLocked(t))
}

// SetVolume sets the output gain, clamped to [0, 1]. The value also
// applies to every later playback session.
func (c *Clock) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = clampVolume(v)
	if c.gain != nil {
		c.gain.SetGain(c.volume)
	}
}

// Volume returns the buffered volume
func (c *Clock) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// State returns the transport state
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns the logical playhead, always within [0, Duration]
func (c *Clock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		return c.positionLocked()
	}
	return c.pausedAt
}

// Duration returns the loaded buffer's length
func (c *Clock) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Close stops playback and unloads the buffer. The engine stays open.
func (c *Clock) Close(ctx context.Context) error {
	err := c.Pause(ctx, true)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSourceLocked()
	if c.gain != nil {
		c.gain.Disconnect()
		c.gain = nil
	}
	c.buf = nil
	c.duration = 0
	c.gen++
	return err
}

// tick pushes the engine position to the cursor once per frame and
// reschedules itself while its generation is current.
func (c *Clock) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != Playing {
		c.mu.Unlock()
		return
	}

	if c.engine.CurrentTime()-c.startedAt >= c.duration {
		c.finishLocked()
		return
	}

	c.updateCursorLocked(c.positionLocked())
	c.mu.Unlock()

	c.frames.RequestFrame(func() { c.tick(gen) })
}

// finishLocked handles end of media and releases mu
func (c *Clock) finishLocked() {
	c.stopSourceLocked()
	c.pausedAt = 0
	c.state = Stopped
	c.gen++
	gen := c.gen
	c.updateCursorLocked(0)
	ticket := c.takeTicketLocked()
	finished := c.onFinished
	c.mu.Unlock()

	log.Printf("Playback finished")

	if err := c.runEngine(context.Background(), ticket, gen, c.engine.Suspend); err != nil {
		log.Printf("Failed to suspend engine at end of media: %v", err)
	}
	if finished != nil {
		finished()
	}
}

// startSourceLocked creates, routes and starts a source at offset
func (c *Clock) startSourceLocked(offset time.Duration) error {
	src, err := c.engine.CreateSource(c.buf)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}
	if err := c.engine.Connect(src, c.gain); err != nil {
		return fmt.Errorf("failed to route source: %w", err)
	}
	if err := src.Start(offset); err != nil {
		src.Disconnect()
		if errors.Is(err, output.ErrSourceUsed) {
			return fmt.Errorf("fresh source refused to start: %w", ErrEngineStateViolation)
		}
		return fmt.Errorf("failed to start source: %w", err)
	}

	c.source = src
	c.startedAt = c.engine.CurrentTime() - offset
	return nil
}

func (c *Clock) stopSourceLocked() {
	if c.source == nil {
		return
	}
	if err := c.source.Stop(); err != nil {
		log.Printf("Failed to stop source: %v", err)
	}
	c.source.Disconnect()
	c.source = nil
}

func (c *Clock) positionLocked() time.Duration {
	return c.clampLocked(c.engine.CurrentTime() - c.startedAt)
}

func (c *Clock) clampLocked(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if t > c.duration {
		return c.duration
	}
	return t
}

func (c *Clock) updateCursorLocked(t time.Duration) {
	if c.cursor != nil {
		c.cursor.UpdateCursor(t)
	}
}

func (c *Clock) takeTicketLocked() uint64 {
	t := c.tickets
	c.tickets++
	return t
}

// runEngine waits for ticket's turn and then runs call, unless a newer
// transition has been committed since gen. If ctx ends while waiting, the
// ticket is given up and skipped when its turn comes.
func (c *Clock) runEngine(ctx context.Context, ticket, gen uint64, call func(context.Context) error) error {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.turn.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	for c.serving != ticket {
		if err := ctx.Err(); err != nil {
			c.abandoned[ticket] = struct{}{}
			c.mu.Unlock()
			return err
		}
		c.turn.Wait()
	}
	stale := gen != c.gen
	c.mu.Unlock()

	var err error
	if !stale {
		err = call(ctx)
	}

	c.mu.Lock()
	c.serving++
	for {
		if _, ok := c.abandoned[c.serving]; !ok {
			break
		}
		delete(c.abandoned, c.serving)
		c.serving++
	}
	c.turn.Broadcast()
	c.mu.Unlock()
	return err
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
