// ABOUTME: Tests for the playback clock
// ABOUTME: Covers time accounting, seeking, the tick loop and engine call races
package playback

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without an engine")
	}
}

func TestPlayWithoutBuffer(t *testing.T) {
	c, err := New(Config{Engine: newFakeEngine(newFakeTime()), Frames: &manualFrames{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.Play(context.Background()); !errors.Is(err, ErrNoBufferLoaded) {
		t.Errorf("expected ErrNoBufferLoaded, got %v", err)
	}
	if c.State() != Stopped {
		t.Errorf("expected Stopped, got %v", c.State())
	}
	if err := c.Load(nil); !errors.Is(err, ErrNoBufferLoaded) {
		t.Errorf("expected ErrNoBufferLoaded from Load(nil), got %v", err)
	}
}

func TestPauseSeekPlayScenario(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(4 * time.Second)

	if err := h.clock.Pause(ctx, false); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if got := h.clock.Position(); got != 4*time.Second {
		t.Fatalf("expected pausedAt 4s, got %v", got)
	}
	if h.clock.State() != Paused {
		t.Fatalf("expected Paused, got %v", h.clock.State())
	}

	if err := h.clock.SeekTo(8 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if got := h.clock.Position(); got != 8*time.Second {
		t.Fatalf("expected pausedAt 8s, got %v", got)
	}

	// Wall time passes while the engine is suspended
	h.time.Advance(3 * time.Second)

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if got := h.clock.Position(); got != 8*time.Second {
		t.Errorf("expected position 8s right after play, got %v", got)
	}

	h.time.Advance(time.Second)
	if got := h.clock.Position(); got != 9*time.Second {
		t.Errorf("expected position 9s, got %v", got)
	}
}

func TestDoublePlayIsNoop(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("second Play failed: %v", err)
	}

	if h.clock.State() != Playing {
		t.Errorf("expected Playing, got %v", h.clock.State())
	}
	if got := h.engine.Created(); got != 1 {
		t.Errorf("expected one source, got %d", got)
	}
	if got := h.engine.Calls(); !reflect.DeepEqual(got, []string{"resume"}) {
		t.Errorf("expected a single resume, got %v", got)
	}
	if got := h.frames.Pending(); got != 1 {
		t.Errorf("expected one tick chain, got %d", got)
	}
}

func TestPreviewSeekLeavesPosition(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(3 * time.Second)

	for i := 0; i < 3; i++ {
		h.clock.PreviewSeek(7 * time.Second)
	}
	if got := h.cursor.Last(); got != 7*time.Second {
		t.Errorf("expected cursor at 7s, got %v", got)
	}

	if err := h.clock.Pause(ctx, false); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if got := h.clock.Position(); got != 3*time.Second {
		t.Errorf("expected 3s after previews, got %v", got)
	}

	h.clock.PreviewSeek(9 * time.Second)
	if got := h.clock.Position(); got != 3*time.Second {
		t.Errorf("preview moved paused position to %v", got)
	}
	if got := h.engine.Created(); got != 1 {
		t.Errorf("preview created sources: %d", got)
	}
}

func TestSeekClamps(t *testing.T) {
	h := newHarness(t, 10)

	tests := []struct {
		seek time.Duration
		want time.Duration
	}{
		{-time.Second, 0},
		{0, 0},
		{5 * time.Second, 5 * time.Second},
		{10 * time.Second, 10 * time.Second},
		{time.Hour, 10 * time.Second},
	}
	for _, tt := range tests {
		if err := h.clock.SeekTo(tt.seek); err != nil {
			t.Fatalf("SeekTo(%v) failed: %v", tt.seek, err)
		}
		if got := h.clock.Position(); got != tt.want {
			t.Errorf("SeekTo(%v): position %v, want %v", tt.seek, got, tt.want)
		}
		if got := h.cursor.Last(); got != tt.want {
			t.Errorf("SeekTo(%v): cursor %v, want %v", tt.seek, got, tt.want)
		}
	}

	h.clock.PreviewSeek(-time.Minute)
	if got := h.cursor.Last(); got != 0 {
		t.Errorf("preview clamp: cursor %v", got)
	}
}

func TestPositionNeverExceedsDuration(t *testing.T) {
	h := newHarness(t, 10)

	if err := h.clock.SeekTo(9 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if err := h.clock.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(5 * time.Second)

	if got := h.clock.Position(); got != 10*time.Second {
		t.Errorf("expected clamp to 10s before the tick notices, got %v", got)
	}
}

func TestSeekIdempotent(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	for _, target := range []time.Duration{0, 1500 * time.Millisecond, 10 * time.Second} {
		if err := h.clock.SeekTo(target); err != nil {
			t.Fatalf("SeekTo failed: %v", err)
		}
		first := h.cursor.Last()

		if err := h.clock.Pause(ctx, true); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if err := h.clock.SeekTo(target); err != nil {
			t.Fatalf("SeekTo failed: %v", err)
		}
		if got := h.cursor.Last(); got != first {
			t.Errorf("seek %v: cursor %v, first seek gave %v", target, got, first)
		}
	}
}

func TestSeekFromStopped(t *testing.T) {
	tests := []struct {
		name   string
		target time.Duration
		want   State
	}{
		{"off zero", 5 * time.Second, Paused},
		{"to the end", 10 * time.Second, Paused},
		{"to zero", 0, Stopped},
		{"before zero", -time.Second, Stopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 10)

			if err := h.clock.SeekTo(tt.target); err != nil {
				t.Fatalf("SeekTo failed: %v", err)
			}
			if got := h.clock.State(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if h.clock.State() == Stopped && h.clock.Position() != 0 {
				t.Errorf("stopped away from 0 at %v", h.clock.Position())
			}
			if got := h.engine.Calls(); len(got) != 0 {
				t.Errorf("expected no engine calls, got %v", got)
			}
		})
	}
}

func TestPauseResetWhenNotPlaying(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.SeekTo(4 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if err := h.clock.Pause(ctx, false); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if got := h.clock.Position(); got != 4*time.Second {
		t.Errorf("pause without reset moved position to %v", got)
	}

	if err := h.clock.Pause(ctx, true); err != nil {
		t.Fatalf("Pause(reset) failed: %v", err)
	}
	if got := h.clock.Position(); got != 0 {
		t.Errorf("expected position 0 after reset, got %v", got)
	}
	if h.clock.State() != Stopped {
		t.Errorf("expected Stopped, got %v", h.clock.State())
	}
	if got := h.cursor.Last(); got != 0 {
		t.Errorf("expected cursor 0, got %v", got)
	}
	if got := h.engine.Calls(); len(got) != 0 {
		t.Errorf("expected no engine calls, got %v", got)
	}
}

func TestStopWhilePlaying(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(2 * time.Second)
	if err := h.clock.Pause(ctx, true); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	if h.clock.State() != Stopped || h.clock.Position() != 0 {
		t.Errorf("expected Stopped at 0, got %v at %v", h.clock.State(), h.clock.Position())
	}
	if h.engine.Live() != 0 {
		t.Errorf("expected no live sources, got %d", h.engine.Live())
	}
	if h.engine.clock.Running() {
		t.Error("engine should be suspended")
	}
}

func TestSeekWhilePlaying(t *testing.T) {
	h := newHarness(t, 10)

	if err := h.clock.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(2 * time.Second)

	if err := h.clock.SeekTo(7 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if h.clock.State() != Playing {
		t.Fatalf("expected Playing after seek, got %v", h.clock.State())
	}
	if got := h.clock.Position(); got != 7*time.Second {
		t.Errorf("expected 7s, got %v", got)
	}
	if got := h.engine.Live(); got != 1 {
		t.Errorf("expected one live source, got %d", got)
	}
	if got := h.engine.Created(); got != 2 {
		t.Errorf("expected a replacement source, got %d created", got)
	}

	h.time.Advance(time.Second)
	if got := h.clock.Position(); got != 8*time.Second {
		t.Errorf("expected 8s, got %v", got)
	}
}

func TestTickDrivesCursor(t *testing.T) {
	h := newHarness(t, 10)

	if err := h.clock.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	h.time.Advance(1500 * time.Millisecond)
	if ran := h.frames.pump(); ran != 1 {
		t.Fatalf("expected one tick, got %d", ran)
	}
	if got := h.cursor.Last(); got != 1500*time.Millisecond {
		t.Errorf("expected cursor at 1.5s, got %v", got)
	}
	if got := h.frames.Pending(); got != 1 {
		t.Errorf("tick should reschedule itself, pending=%d", got)
	}
}

func TestTickStopsAfterPause(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := h.clock.Pause(ctx, false); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	h.frames.pump()
	if got := h.frames.Pending(); got != 0 {
		t.Errorf("stale tick rescheduled itself, pending=%d", got)
	}
}

func TestStaleTickDoesNotDoubleDrive(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := h.clock.Pause(ctx, false); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Both chains are queued, only the newer one may survive
	if got := h.frames.Pending(); got != 2 {
		t.Fatalf("expected two queued ticks, got %d", got)
	}
	h.frames.pump()
	if got := h.frames.Pending(); got != 1 {
		t.Errorf("expected one surviving chain, got %d", got)
	}
	h.frames.pump()
	if got := h.frames.Pending(); got != 1 {
		t.Errorf("expected one surviving chain, got %d", got)
	}
}

func TestEndOfMedia(t *testing.T) {
	h := newHarness(t, 10)

	if err := h.clock.SeekTo(9 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if err := h.clock.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	h.time.Advance(2 * time.Second)
	h.frames.pump()

	if h.clock.State() != Stopped {
		t.Errorf("expected Stopped at end, got %v", h.clock.State())
	}
	if got := h.clock.Position(); got != 0 {
		t.Errorf("expected rewind to 0, got %v", got)
	}
	if h.finished != 1 {
		t.Errorf("expected OnFinished once, got %d", h.finished)
	}
	if got := h.engine.Live(); got != 0 {
		t.Errorf("expected no live sources, got %d", got)
	}
	if got := h.frames.Pending(); got != 0 {
		t.Errorf("tick loop should end, pending=%d", got)
	}
	if calls := h.engine.Calls(); calls[len(calls)-1] != "suspend" {
		t.Errorf("expected a final suspend, got %v", calls)
	}
}

func TestPauseDuringBlockedResume(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	entered, release := h.engine.blockNextResume()

	playErr := make(chan error, 1)
	go func() { playErr <- h.clock.Play(ctx) }()
	<-entered

	// Play committed before its resume suspended
	if h.clock.State() != Playing {
		t.Fatalf("expected Playing during resume, got %v", h.clock.State())
	}

	pauseErr := make(chan error, 1)
	go func() { pauseErr <- h.clock.Pause(ctx, false) }()
	waitFor(t, "pause to commit", func() bool { return h.clock.State() == Paused })

	release()
	if err := <-playErr; err != nil {
		t.Errorf("Play failed: %v", err)
	}
	if err := <-pauseErr; err != nil {
		t.Errorf("Pause failed: %v", err)
	}

	if got := h.engine.Calls(); !reflect.DeepEqual(got, []string{"resume", "suspend"}) {
		t.Errorf("expected resume then suspend, got %v", got)
	}
	if h.clock.State() != Paused {
		t.Errorf("stale resume resurrected state %v", h.clock.State())
	}
	if h.engine.clock.Running() {
		t.Error("engine should end suspended")
	}
	if got := h.engine.Live(); got != 0 {
		t.Errorf("expected no live sources, got %d", got)
	}
}

func TestCancelledWaitGivesUpTurn(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	entered, release := h.engine.blockNextResume()

	playErr := make(chan error, 1)
	go func() { playErr <- h.clock.Play(ctx) }()
	<-entered

	pauseCtx, cancel := context.WithCancel(ctx)
	pauseErr := make(chan error, 1)
	go func() { pauseErr <- h.clock.Pause(pauseCtx, false) }()
	waitFor(t, "pause to commit", func() bool { return h.clock.State() == Paused })

	// The pause returns while the resume is still stuck
	cancel()
	select {
	case err := <-pauseErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Pause kept waiting after its context ended")
	}

	release()
	if err := <-playErr; err != nil {
		t.Errorf("Play failed: %v", err)
	}

	// Later calls are not stuck behind the abandoned turn
	done := make(chan error, 1)
	go func() {
		if err := h.clock.Play(ctx); err != nil {
			done <- err
			return
		}
		done <- h.clock.Pause(ctx, false)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("follow-up call failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("engine calls stalled behind an abandoned turn")
	}

	want := []string{"resume", "resume", "suspend"}
	if got := h.engine.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := h.engine.Live(); got != 0 {
		t.Errorf("expected no live sources, got %d", got)
	}
}

func TestPausePlayDuringBlockedResume(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	entered, release := h.engine.blockNextResume()

	errs := make(chan error, 3)
	go func() { errs <- h.clock.Play(ctx) }()
	<-entered

	go func() { errs <- h.clock.Pause(ctx, false) }()
	waitFor(t, "pause to commit", func() bool { return h.clock.State() == Paused })

	go func() { errs <- h.clock.Play(ctx) }()
	waitFor(t, "second play to commit", func() bool { return h.clock.State() == Playing })

	release()
	for i := 0; i < 3; i++ {
		if err := <-errs; err != nil {
			t.Errorf("operation failed: %v", err)
		}
	}

	// The superseded suspend never reaches the engine
	if got := h.engine.Calls(); !reflect.DeepEqual(got, []string{"resume", "resume"}) {
		t.Errorf("expected two resumes, got %v", got)
	}
	if got := h.engine.Live(); got != 1 {
		t.Errorf("expected exactly one live source, got %d", got)
	}
	if !h.engine.clock.Running() {
		t.Error("engine should end running")
	}
	if got := h.frames.pump(); got != 2 {
		t.Fatalf("expected two queued ticks, got %d", got)
	}
	if got := h.frames.Pending(); got != 1 {
		t.Errorf("expected one live tick chain, got %d", got)
	}
}

func TestResumeFailureRollsBack(t *testing.T) {
	h := newHarness(t, 10)
	h.engine.resumeErr = errors.New("device unplugged")

	if err := h.clock.SeekTo(3 * time.Second); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}
	if err := h.clock.Play(context.Background()); err == nil {
		t.Fatal("expected Play to fail")
	}

	if h.clock.State() != Paused {
		t.Errorf("expected previous state Paused, got %v", h.clock.State())
	}
	if got := h.clock.Position(); got != 3*time.Second {
		t.Errorf("expected position restored to 3s, got %v", got)
	}
	if got := h.engine.Live(); got != 0 {
		t.Errorf("expected no live sources, got %d", got)
	}
	h.frames.pump()
	if got := h.frames.Pending(); got != 0 {
		t.Errorf("failed play left a tick chain, pending=%d", got)
	}
}

func TestVolumeBuffered(t *testing.T) {
	c, err := New(Config{Engine: newFakeEngine(newFakeTime()), Frames: &manualFrames{}, Volume: 0.8})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.SetVolume(0.3)
	buf, err := audio.NewBuffer(10, [][]float32{make([]float32, 10)})
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if err := c.Load(buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := c.gain.Gain(); got != 0.3 {
		t.Errorf("expected buffered volume 0.3 on gain, got %v", got)
	}

	c.SetVolume(2)
	if got := c.Volume(); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
	c.SetVolume(-1)
	if got := c.gain.Gain(); got != 0 {
		t.Errorf("expected clamp to 0 on gain, got %v", got)
	}
}

func TestClose(t *testing.T) {
	h := newHarness(t, 10)
	ctx := context.Background()

	if err := h.clock.Play(ctx); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := h.clock.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if h.clock.State() != Stopped {
		t.Errorf("expected Stopped, got %v", h.clock.State())
	}
	if err := h.clock.Play(ctx); !errors.Is(err, ErrNoBufferLoaded) {
		t.Errorf("expected ErrNoBufferLoaded after close, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Stopped:  "stopped",
		Playing:  "playing",
		Paused:   "paused",
		State(9): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestFrameSchedulers(t *testing.T) {
	if got := NewTickerFrames(0).Interval(); got != DefaultFrameInterval {
		t.Errorf("expected default interval, got %v", got)
	}

	done := make(chan struct{})
	NewTickerFrames(time.Millisecond).RequestFrame(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame never fired")
	}

	ran := false
	FrameFunc(func(fn func()) { fn() }).RequestFrame(func() { ran = true })
	if !ran {
		t.Error("FrameFunc did not run the frame")
	}
}
