// ABOUTME: Terminal rasterisation of the waveform and playhead
// ABOUTME: Paints bars with a vertical colour gradient and a highlighted cursor
package waveform

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	barTop    = "#60a5fa"
	barBottom = "#9333ea"
	cursorHex = "#facc15"

	barGlyph     = "█"
	emptyGlyph   = " "
	cursorHead   = "▼"
	cursorGlyph  = "│"
	cursorOnWave = "┃"
)

// palette holds one bar style per row plus the cursor style
type palette struct {
	rows   []lipgloss.Style
	cursor lipgloss.Style
}

func newPalette(height int) palette {
	top, _ := colorful.Hex(barTop)
	bottom, _ := colorful.Hex(barBottom)

	p := palette{
		rows:   make([]lipgloss.Style, height),
		cursor: lipgloss.NewStyle().Foreground(lipgloss.Color(cursorHex)).Bold(true),
	}
	for row := range p.rows {
		t := 0.0
		if height > 1 {
			t = float64(row) / float64(height-1)
		}
		c := top.BlendLab(bottom, t).Clamped()
		p.rows[row] = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	}
	return p
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBar
	cellCursor
)

// View rasterises the current layout. Before the first Render it returns
// blank rows of the viewport size.
func (r *Renderer) View() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, height := r.vp.Width, r.vp.Height
	cursorCol := -1
	if r.rendered {
		cursorCol = int(r.cursorX)
		if cursorCol >= width {
			cursorCol = width - 1
		}
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		run := cellEmpty
		var seg strings.Builder

		flush := func() {
			if seg.Len() == 0 {
				return
			}
			switch run {
			case cellBar:
				b.WriteString(r.palette.rows[row].Render(seg.String()))
			case cellCursor:
				b.WriteString(r.palette.cursor.Render(seg.String()))
			default:
				b.WriteString(seg.String())
			}
			seg.Reset()
		}

		for col := 0; col < width; col++ {
			kind, glyph := r.cellLocked(row, col, cursorCol)
			if kind != run {
				flush()
				run = kind
			}
			seg.WriteString(glyph)
		}
		flush()

		if row < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (r *Renderer) cellLocked(row, col, cursorCol int) (cellKind, string) {
	filled := r.filledLocked(row, col)
	if col == cursorCol {
		switch {
		case row == 0:
			return cellCursor, cursorHead
		case filled:
			return cellCursor, cursorOnWave
		default:
			return cellCursor, cursorGlyph
		}
	}
	if filled {
		return cellBar, barGlyph
	}
	return cellEmpty, emptyGlyph
}

// filledLocked reports whether the bar in col covers row. Bars are centred;
// any non-zero magnitude shows at least one cell.
func (r *Renderer) filledLocked(row, col int) bool {
	if !r.rendered || col >= len(r.columns) {
		return false
	}
	mag := r.columns[col]
	if mag <= 0 {
		return false
	}

	height := r.vp.Height
	cells := int(mag*float64(height) + 0.5)
	if cells < 1 {
		cells = 1
	}
	if cells > height {
		cells = height
	}
	top := (height - cells) / 2
	return row >= top && row < top+cells
}
