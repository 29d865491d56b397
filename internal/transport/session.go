// ABOUTME: One loaded file and everything built from it
// ABOUTME: Bundles buffer, summary, renderer and clock under a session id
package transport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/wavescrub/internal/playback"
	"github.com/Resonate-Protocol/wavescrub/internal/waveform"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
)

// Session is replaced wholesale on every Init and never mutated afterwards,
// apart from the scrub flag.
type Session struct {
	ID       uuid.UUID
	Buffer   *audio.Buffer
	Summary  waveform.Summary
	Renderer *waveform.Renderer
	Clock    *playback.Clock
	Created  time.Time

	unsubscribe func()
	wasPlaying  atomic.Bool // playing when the current scrub began
}

// close detaches the renderer and stops playback
func (s *Session) close(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	return s.Clock.Close(ctx)
}
