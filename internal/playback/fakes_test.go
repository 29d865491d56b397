// ABOUTME: Test doubles for the playback clock
// ABOUTME: Manual time, a recording engine, manual frames and a cursor log
package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/output"
	enginesync "github.com/Resonate-Protocol/wavescrub/pkg/sync"
)

type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Unix(1000, 0)}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeEngine is a silent engine that records engine calls and live sources
type fakeEngine struct {
	*output.Silent
	clock *enginesync.Clock

	mu        sync.Mutex
	calls     []string
	gate      chan struct{} // blocks the next Resume until closed
	entered   chan struct{}
	resumeErr error
	created   int
	live      int
}

func newFakeEngine(ft *fakeTime) *fakeEngine {
	clock := enginesync.NewClockWithSource(ft.Now)
	return &fakeEngine{
		Silent: output.NewSilentWithClock(clock),
		clock:  clock,
	}
}

// blockNextResume makes the next Resume wait until the returned func is called
func (e *fakeEngine) blockNextResume() (entered <-chan struct{}, release func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gate = make(chan struct{})
	e.entered = make(chan struct{})
	gate := e.gate
	return e.entered, func() { close(gate) }
}

func (e *fakeEngine) Resume(ctx context.Context) error {
	e.mu.Lock()
	e.calls = append(e.calls, "resume")
	gate, entered := e.gate, e.entered
	e.gate, e.entered = nil, nil
	resumeErr := e.resumeErr
	e.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	if resumeErr != nil {
		return resumeErr
	}
	return e.Silent.Resume(ctx)
}

func (e *fakeEngine) Suspend(ctx context.Context) error {
	e.mu.Lock()
	e.calls = append(e.calls, "suspend")
	e.mu.Unlock()
	return e.Silent.Suspend(ctx)
}

func (e *fakeEngine) CreateSource(buf *audio.Buffer) (output.Source, error) {
	src, err := e.Silent.CreateSource(buf)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.created++
	e.mu.Unlock()
	return &trackedSource{Source: src, e: e}, nil
}

func (e *fakeEngine) Connect(from, to output.Node) error {
	if ts, ok := from.(*trackedSource); ok {
		from = ts.Source
	}
	return e.Silent.Connect(from, to)
}

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *fakeEngine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

func (e *fakeEngine) Created() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.created
}

type trackedSource struct {
	output.Source
	e       *fakeEngine
	started bool
	stopped bool
}

func (s *trackedSource) Start(offset time.Duration) error {
	if err := s.Source.Start(offset); err != nil {
		return err
	}
	s.e.mu.Lock()
	s.started = true
	s.e.live++
	s.e.mu.Unlock()
	return nil
}

func (s *trackedSource) Stop() error {
	s.e.mu.Lock()
	if s.started && !s.stopped {
		s.e.live--
	}
	s.stopped = true
	s.e.mu.Unlock()
	return s.Source.Stop()
}

type manualFrames struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualFrames) RequestFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
}

// pump runs every queued frame callback once and returns how many ran
func (m *manualFrames) pump() int {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (m *manualFrames) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

type cursorLog struct {
	mu        sync.Mutex
	positions []time.Duration
}

func (c *cursorLog) UpdateCursor(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = append(c.positions, t)
}

func (c *cursorLog) Last() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.positions) == 0 {
		return -1
	}
	return c.positions[len(c.positions)-1]
}

type harness struct {
	clock    *Clock
	engine   *fakeEngine
	time     *fakeTime
	frames   *manualFrames
	cursor   *cursorLog
	finished int
}

// newHarness returns a clock loaded with a silent buffer of the given length
func newHarness(t *testing.T, seconds int) *harness {
	t.Helper()

	h := &harness{
		time:   newFakeTime(),
		frames: &manualFrames{},
		cursor: &cursorLog{},
	}
	h.engine = newFakeEngine(h.time)

	clock, err := New(Config{
		Engine:     h.engine,
		Frames:     h.frames,
		Cursor:     h.cursor,
		Volume:     1,
		OnFinished: func() { h.finished++ },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.clock = clock

	const rate = 100
	buf, err := audio.NewBuffer(rate, [][]float32{make([]float32, seconds*rate)})
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if err := clock.Load(buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return h
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
