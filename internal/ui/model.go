// ABOUTME: Bubbletea model for the waveform player TUI
// ABOUTME: Maps keys and mouse drags onto transport operations
package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Resonate-Protocol/wavescrub/internal/playback"
	"github.com/Resonate-Protocol/wavescrub/internal/waveform"
)

// chromeRows is the number of lines drawn around the waveform
const (
	headerRows = 3
	footerRows = 3
	chromeRows = headerRows + footerRows
)

// Player is the transport surface the TUI drives
type Player interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context, reset bool) error
	SeekTo(pos time.Duration) error
	SetVolume(v float64)
	State() playback.State
	Position() time.Duration
	Duration() time.Duration
	Renderer() *waveform.Renderer
}

// Options configures the model
type Options struct {
	FileName      string
	Volume        int // percent
	Muted         bool
	SeekStep      time.Duration
	FrameInterval time.Duration
	WaveHeight    int
}

// Model represents the TUI state
type Model struct {
	player Player
	ctx    context.Context

	// File
	fileName  string
	sizeBytes uint64

	// Metadata
	title  string
	artist string
	album  string

	// Stream
	codec      string
	sampleRate int
	channels   int
	bitDepth   int

	// Playback
	volume   int
	muted    bool
	seekStep time.Duration
	frame    time.Duration
	status   string
	err      error

	// Dimensions
	width      int
	height     int
	waveHeight int
}

// frameMsg redraws the playhead
type frameMsg time.Time

// StatusMsg updates TUI state from outside the program
type StatusMsg struct {
	Title      string
	Artist     string
	Album      string
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	SizeBytes  uint64
	Finished   bool
	Err        error
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, player Player, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = playback.DefaultFrameInterval
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = 5 * time.Second
	}
	if opts.WaveHeight <= 0 {
		opts.WaveHeight = 12
	}
	return Model{
		player:     player,
		ctx:        ctx,
		fileName:   opts.FileName,
		volume:     opts.Volume,
		muted:      opts.Muted,
		seekStep:   opts.SeekStep,
		frame:      opts.FrameInterval,
		waveHeight: opts.WaveHeight,
		status:     "Ready",
	}
}

// Init starts the redraw loop
func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Err returns the error that ended the program, if any
func (m Model) Err() error {
	return m.err
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case frameMsg:
		return m, m.nextFrame()
	case StatusMsg:
		return m.applyStatus(msg)
	}

	return m, nil
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	if r := m.player.Renderer(); r != nil {
		b.WriteString(r.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderTransport())
	b.WriteString(m.renderControls())
	b.WriteString(m.renderHelp())
	return b.String()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	stateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	volumeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
)

// renderHeader renders the track and format lines
func (m Model) renderHeader() string {
	name := m.title
	if name == "" {
		name = m.fileName
	}
	if m.artist != "" {
		name = m.artist + " - " + name
	}

	format := "Unknown format"
	if m.codec != "" {
		format = fmt.Sprintf("%s %dHz %s", strings.ToUpper(m.codec), m.sampleRate, channelName(m.channels))
		if m.bitDepth > 0 {
			format += fmt.Sprintf(" %d-bit", m.bitDepth)
		}
	}
	if m.album != "" {
		format = m.album + " · " + format
	}
	if m.sizeBytes != 0 {
		format += " · " + humanize.Bytes(m.sizeBytes)
	}

	return titleStyle.Render(truncate(name, m.width)) + "\n" +
		dimStyle.Render(truncate(format, m.width)) + "\n\n"
}

// renderTransport renders state, position and the status line
func (m Model) renderTransport() string {
	icon := "■"
	switch m.player.State() {
	case playback.Playing:
		icon = "▶"
	case playback.Paused:
		icon = "⏸"
	}

	status := dimStyle.Render(m.status)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}

	return fmt.Sprintf("%s %s / %s  %s\n",
		stateStyle.Render(icon),
		formatClock(m.player.Position()),
		formatClock(m.player.Duration()),
		status)
}

// renderControls renders the volume bar
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}
	return fmt.Sprintf("Volume: [%s] %d%%%s\n",
		volumeStyle.Render(renderBar(m.volume, 100, 10)), m.volume, muteIcon)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return dimStyle.Render("space:Play/Pause  s:Stop  ←/→:Seek  ↑/↓:Volume  m:Mute  q:Quit  drag ▼ to scrub")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		ctx, cancel := context.WithTimeout(m.ctx, playback.DefaultEngineTimeout)
		defer cancel()
		if m.player.State() == playback.Playing {
			return m.check(m.player.Pause(ctx, false), "Paused")
		}
		return m.check(m.player.Play(ctx), "Playing")
	case "s":
		ctx, cancel := context.WithTimeout(m.ctx, playback.DefaultEngineTimeout)
		defer cancel()
		return m.check(m.player.Pause(ctx, true), "Stopped")
	case "left":
		return m.check(m.player.SeekTo(m.player.Position()-m.seekStep), "Seek")
	case "right":
		return m.check(m.player.SeekTo(m.player.Position()+m.seekStep), "Seek")
	case "home":
		return m.check(m.player.SeekTo(0), "Seek")
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
		}
		m.applyVolume()
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
		}
		m.applyVolume()
	case "m":
		m.muted = !m.muted
		m.applyVolume()
	case "esc":
		if r := m.player.Renderer(); r != nil {
			r.PointerCancel()
		}
	}

	return m, nil
}

// handleMouse forwards left-button gestures to the renderer
func (m Model) handleMouse(msg tea.MouseMsg) {
	r := m.player.Renderer()
	if r == nil {
		return
	}

	x, y := m.toViewport(r.Viewport(), msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			r.PointerDown(x, y)
		}
	case tea.MouseActionMotion:
		r.PointerMove(x, y)
	case tea.MouseActionRelease:
		r.PointerUp(x, y)
	}
}

// toViewport maps a terminal cell to renderer coordinates. The first and
// last columns map to the start and end of the track.
func (m Model) toViewport(vp waveform.Viewport, col, row int) (float64, float64) {
	x := float64(col)
	if vp.Width > 1 {
		x = float64(col) * float64(vp.Width) / float64(vp.Width-1)
	}
	return x, float64(row - headerRows)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	r := m.player.Renderer()
	if r == nil || width <= 0 {
		return
	}

	rows := m.waveHeight
	if avail := height - chromeRows; avail < rows {
		rows = avail
	}
	if rows < 1 {
		rows = 1
	}

	// Coordinates change under an active drag, so end it first
	r.PointerCancel()
	if err := r.Resize(waveform.Viewport{Width: width, Height: rows}); err != nil {
		log.Printf("Failed to resize waveform: %v", err)
	}
}

func (m *Model) applyVolume() {
	gain := float64(m.volume) / 100
	if m.muted {
		gain = 0
	}
	m.player.SetVolume(gain)
	log.Printf("Volume: %d%% (muted: %v)", m.volume, m.muted)
}

// check records the outcome of a transport call. Engine state violations
// are bugs and end the program.
func (m Model) check(err error, status string) (tea.Model, tea.Cmd) {
	if err == nil {
		m.status = status
		m.err = nil
		return m, nil
	}

	log.Printf("%s failed: %v", status, err)
	m.err = err
	if errors.Is(err, playback.ErrEngineStateViolation) {
		return m, tea.Quit
	}
	return m, nil
}

// applyStatus updates model from status message
func (m Model) applyStatus(msg StatusMsg) (tea.Model, tea.Cmd) {
	if msg.Title != "" {
		m.title = msg.Title
		m.artist = msg.Artist
		m.album = msg.Album
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.SizeBytes != 0 {
		m.sizeBytes = msg.SizeBytes
	}
	if msg.Finished {
		m.status = "Finished"
	}
	if msg.Err != nil {
		return m.check(msg.Err, "Seek")
	}
	return m, nil
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	return b.String()
}

func truncate(s string, length int) string {
	r := []rune(s)
	if length < 4 || len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// formatClock renders d as m:ss
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
