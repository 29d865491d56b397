// ABOUTME: Public playback surface for the UI shell
// ABOUTME: Builds sessions and routes renderer seek events into the clock
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/wavescrub/internal/playback"
	"github.com/Resonate-Protocol/wavescrub/internal/waveform"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/output"
)

// Config configures a Transport
type Config struct {
	Engine output.Engine
	Frames playback.FrameScheduler

	// Buckets is the summary size, 0 for one bucket per sample-rate unit
	Buckets int

	// Volume is the initial output volume in [0, 1]
	Volume float64

	// OnFinished runs when a session plays to the end
	OnFinished func()

	// OnError receives errors raised while handling seek events
	OnError func(error)

	// EngineTimeout bounds engine calls made for seek events, 0 for none
	EngineTimeout time.Duration
}

// Transport composes a playback clock and a waveform renderer over one
// buffer at a time.
type Transport struct {
	mu      sync.Mutex
	config  Config
	session *Session
	volume  float64
}

// New creates a transport with no session
func New(config Config) (*Transport, error) {
	if config.Engine == nil {
		return nil, errors.New("transport needs an audio engine")
	}
	if config.OnError == nil {
		config.OnError = func(err error) {
			log.Printf("Seek event failed: %v", err)
		}
	}
	return &Transport{
		config: config,
		volume: config.Volume,
	}, nil
}

// Init replaces the current session with one built from buf. On error the
// transport is left without a session.
func (t *Transport) Init(ctx context.Context, buf *audio.Buffer, container waveform.Container) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old := t.session; old != nil {
		t.session = nil
		if err := old.close(ctx); err != nil {
			log.Printf("Failed to close session %s: %v", old.ID, err)
		}
	}

	if container == nil {
		return fmt.Errorf("init: %w", waveform.ErrInvalidContainer)
	}

	summary, err := waveform.SummarizeBuckets(buf, t.config.Buckets)
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	renderer, err := waveform.NewRenderer(buf.Duration(), container.Viewport())
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	renderer.Render(summary)

	clock, err := playback.New(playback.Config{
		Engine:     t.config.Engine,
		Frames:     t.config.Frames,
		Cursor:     renderer,
		Volume:     t.volume,
		OnFinished: t.config.OnFinished,
	})
	if err != nil {
		return fmt.Errorf("failed to create clock: %w", err)
	}
	if err := clock.Load(buf); err != nil {
		return fmt.Errorf("failed to load buffer: %w", err)
	}

	s := &Session{
		ID:       uuid.New(),
		Buffer:   buf,
		Summary:  summary,
		Renderer: renderer,
		Clock:    clock,
		Created:  time.Now(),
	}
	s.unsubscribe = renderer.Subscribe(t.handler(s))
	t.session = s

	log.Printf("Session %s: %v, %d Hz, %d channels, %s", s.ID,
		buf.Duration().Round(time.Millisecond), buf.SampleRate, buf.NumChannels(),
		humanize.Bytes(buf.SizeBytes()))
	return nil
}

// handler maps one session's renderer events onto its clock
func (t *Transport) handler(s *Session) waveform.Handler {
	return func(e waveform.Event) {
		ctx, cancel := t.eventContext()
		defer cancel()

		switch e := e.(type) {
		case waveform.SeekStart:
			s.wasPlaying.Store(s.Clock.State() == playback.Playing)
			if err := s.Clock.Pause(ctx, false); err != nil {
				t.config.OnError(err)
			}
		case waveform.SeekPreview:
			s.Clock.PreviewSeek(e.Time)
		case waveform.SeekCommit:
			if err := s.Clock.SeekTo(e.Time); err != nil {
				t.config.OnError(err)
				return
			}
			if s.wasPlaying.Swap(false) {
				if err := s.Clock.Play(ctx); err != nil {
					t.config.OnError(err)
				}
			}
		}
	}
}

func (t *Transport) eventContext() (context.Context, context.CancelFunc) {
	if t.config.EngineTimeout > 0 {
		return context.WithTimeout(context.Background(), t.config.EngineTimeout)
	}
	return context.WithCancel(context.Background())
}

// Play starts or resumes playback
func (t *Transport) Play(ctx context.Context) error {
	s := t.current()
	if s == nil {
		return playback.ErrNoBufferLoaded
	}
	return s.Clock.Play(ctx)
}

// Pause pauses playback, or stops it with reset
func (t *Transport) Pause(ctx context.Context, reset bool) error {
	s := t.current()
	if s == nil {
		return nil
	}
	return s.Clock.Pause(ctx, reset)
}

// Stop pauses and rewinds to the start
func (t *Transport) Stop(ctx context.Context) error {
	return t.Pause(ctx, true)
}

// SeekTo moves the playhead, keeping the transport state
func (t *Transport) SeekTo(pos time.Duration) error {
	s := t.current()
	if s == nil {
		return playback.ErrNoBufferLoaded
	}
	return s.Clock.SeekTo(pos)
}

// PreviewSeek shows pos on the cursor without seeking
func (t *Transport) PreviewSeek(pos time.Duration) {
	if s := t.current(); s != nil {
		s.Clock.PreviewSeek(pos)
	}
}

// SetVolume sets the volume for the current and later sessions
func (t *Transport) SetVolume(v float64) {
	t.mu.Lock()
	t.volume = v
	s := t.session
	t.mu.Unlock()

	if s != nil {
		s.Clock.SetVolume(v)
	}
}

// Volume returns the volume in effect
func (t *Transport) Volume() float64 {
	if s := t.current(); s != nil {
		return s.Clock.Volume()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// Session returns the current session, or nil
func (t *Transport) Session() *Session {
	return t.current()
}

// Renderer returns the current session's renderer, or nil
func (t *Transport) Renderer() *waveform.Renderer {
	if s := t.current(); s != nil {
		return s.Renderer
	}
	return nil
}

// State returns the transport state, Stopped without a session
func (t *Transport) State() playback.State {
	if s := t.current(); s != nil {
		return s.Clock.State()
	}
	return playback.Stopped
}

// Position returns the playhead position
func (t *Transport) Position() time.Duration {
	if s := t.current(); s != nil {
		return s.Clock.Position()
	}
	return 0
}

// Duration returns the loaded buffer's length
func (t *Transport) Duration() time.Duration {
	if s := t.current(); s != nil {
		return s.Clock.Duration()
	}
	return 0
}

// ID returns the current session id, or uuid.Nil
func (t *Transport) ID() uuid.UUID {
	if s := t.current(); s != nil {
		return s.ID
	}
	return uuid.Nil
}

// Close ends the current session. The engine is left open for its owner.
func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	s := t.session
	t.session = nil
	t.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.close(ctx)
}

func (t *Transport) current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}
