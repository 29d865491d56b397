// ABOUTME: Play subcommand
// ABOUTME: Decodes a file and runs the waveform TUI or a headless player
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Resonate-Protocol/wavescrub/internal/config"
	"github.com/Resonate-Protocol/wavescrub/internal/playback"
	"github.com/Resonate-Protocol/wavescrub/internal/transport"
	"github.com/Resonate-Protocol/wavescrub/internal/ui"
	"github.com/Resonate-Protocol/wavescrub/internal/waveform"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/decode"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/output"
)

// initialWidth is used until the terminal reports its size
const initialWidth = 80

type playOptions struct {
	noTUI   bool
	paused  bool
	backend string
	volume  int
	logFile string
}

func newPlayCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Play a file with an interactive waveform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *Config()
			if cmd.Flags().Changed("backend") {
				c.Audio.Backend = opts.backend
			}
			if cmd.Flags().Changed("volume") {
				c.Audio.Volume = opts.volume
			}
			if cmd.Flags().Changed("log-file") {
				c.Log.File = opts.logFile
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return runPlay(cmd.Context(), cmd.OutOrStdout(), args[0], &c, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Disable TUI, use streaming logs instead")
	cmd.Flags().BoolVar(&opts.paused, "paused", false, "Open paused instead of playing immediately")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Audio backend: oto or silent")
	cmd.Flags().IntVar(&opts.volume, "volume", 0, "Volume percent (0-100)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Log file path")
	return cmd
}

func runPlay(ctx context.Context, stdout io.Writer, path string, c *config.Config, opts *playOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	useTUI := !opts.noTUI

	closeLog, err := setupLogging(c.Log.File, useTUI, stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Printf("Loading %s", path)
	buf, format, err := decode.DecodeFile(path)
	if err != nil {
		return err
	}
	log.Printf("Decoded %s", describe(buf, format))
	meta := readMetadata(path)

	engine, err := openEngine(c.Audio.Backend, buf)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	// prog is set before playback starts, callbacks only fire after that
	var prog *tea.Program
	finished := make(chan struct{}, 1)
	send := func(msg ui.StatusMsg) {
		if prog != nil {
			prog.Send(msg)
		}
	}

	frames := playback.NewTickerFrames(c.TUI.FrameInterval())
	t, err := transport.New(transport.Config{
		Engine:        engine,
		Frames:        frames,
		Buckets:       c.Waveform.Buckets,
		Volume:        c.Audio.Gain(),
		EngineTimeout: playback.DefaultEngineTimeout,
		OnFinished: func() {
			send(ui.StatusMsg{Finished: true})
			select {
			case finished <- struct{}{}:
			default:
			}
		},
		OnError: func(err error) {
			log.Printf("Seek event failed: %v", err)
			send(ui.StatusMsg{Err: err})
		},
	})
	if err != nil {
		return err
	}

	vp := waveform.Viewport{Width: initialWidth, Height: c.Waveform.Height}
	if err := t.Init(ctx, buf, vp); err != nil {
		return err
	}
	defer func() {
		if err := t.Close(context.Background()); err != nil {
			log.Printf("Failed to close transport: %v", err)
		}
	}()

	if !useTUI {
		return runHeadless(ctx, t, finished)
	}

	model := ui.NewModel(ctx, t, ui.Options{
		FileName:      path,
		Volume:        c.Audio.Volume,
		Muted:         c.Audio.Muted,
		SeekStep:      c.TUI.SeekStep(),
		FrameInterval: frames.Interval(),
		WaveHeight:    c.Waveform.Height,
	})
	prog = ui.Run(model)

	go prog.Send(ui.StatusMsg{
		Title:      meta.Title,
		Artist:     meta.Artist,
		Album:      meta.Album,
		Codec:      format.Codec,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
		SizeBytes:  buf.SizeBytes(),
	})

	if !opts.paused {
		if err := t.Play(ctx); err != nil {
			return fmt.Errorf("failed to start playback: %w", err)
		}
	}

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(ui.Model); ok {
		if err := m.Err(); errors.Is(err, playback.ErrEngineStateViolation) {
			return err
		}
	}
	return nil
}

// runHeadless plays to the end or until interrupted, logging progress
func runHeadless(ctx context.Context, t *transport.Transport, finished <-chan struct{}) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	log.Printf("TUI disabled - streaming logs")
	if err := t.Play(ctx); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Printf("Position %v / %v", t.Position().Round(time.Second), t.Duration().Round(time.Second))
		case <-finished:
			log.Printf("Finished")
			return nil
		case <-sigChan:
			log.Printf("Shutting down...")
			return t.Stop(context.Background())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// openEngine opens the configured backend, falling back to silent output
// when no device is available.
func openEngine(backend string, buf *audio.Buffer) (output.Engine, error) {
	if backend == config.BackendSilent {
		log.Printf("Using silent audio backend")
		return output.NewSilent(), nil
	}

	engine, err := output.NewOto(buf.SampleRate, 2)
	if err != nil {
		log.Printf("Audio output unavailable, using silent backend: %v", err)
		return output.NewSilent(), nil
	}
	return engine, nil
}

func readMetadata(path string) decode.Metadata {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Failed to open %s for tags: %v", path, err)
		return decode.Metadata{}
	}
	defer func() { _ = f.Close() }()

	meta, err := decode.ReadMetadata(f)
	if err != nil {
		log.Printf("Failed to read tags: %v", err)
		return decode.Metadata{}
	}
	if meta.Title != "" {
		log.Printf("Metadata: %s - %s (%s)", meta.Artist, meta.Title, meta.Album)
	}
	return meta
}

// describe is the one-line summary shared by play logs and the summary command
func describe(buf *audio.Buffer, format audio.Format) string {
	return fmt.Sprintf("%s, %v, %d Hz, %d channels, %s decoded",
		format.Codec, buf.Duration().Round(time.Millisecond), buf.SampleRate,
		buf.NumChannels(), humanize.Bytes(buf.SizeBytes()))
}
