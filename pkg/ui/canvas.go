package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/render"
)

// A terminal cell stands for CellWidth x CellHeight chart units, so the
// chart keeps its proportions and pixel-based thresholds keep their meaning.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

var (
	tooltipBg     = render.Color{R: 0x1f, G: 0x29, B: 0x37}
	tooltipBorder = render.Color{R: 0x6b, G: 0x72, B: 0x80}
	hoverMix      = 0.35
)

// ChartSize is the chart-space size of a cols x rows cell grid.
func ChartSize(cols, rows int) layout.Size {
	return layout.Size{Width: float64(cols) * CellWidth, Height: float64(rows) * CellHeight}
}

// CellCenter maps a cell to the chart-space point at its centre.
func CellCenter(col, row int) layout.Point {
	return layout.Point{X: (float64(col) + 0.5) * CellWidth, Y: (float64(row) + 0.5) * CellHeight}
}

func cellOf(p layout.Point) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// measureTooltip sizes a bordered tooltip in chart units.
func measureTooltip(lines []string) layout.Size {
	widest := 0
	for _, l := range lines {
		widest = max(widest, runewidth.StringWidth(l))
	}
	return layout.Size{
		Width:  float64(widest+4) * CellWidth,
		Height: float64(len(lines)+2) * CellHeight,
	}
}

type cell struct {
	ch   rune // 0 marks the trailing half of a wide rune
	fg   render.Color
	bg   render.Color
	bold bool
}

// Canvas is a grid of coloured cells a Scene is rasterised into.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas creates a blank canvas.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i] = cell{ch: ' ', fg: render.LabelColor, bg: render.Background}
	}
	return c
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

// Draw rasterises scene. Circles are filled cell by cell, sampling each
// cell centre; cells on the rim take the stroke colour. Circles smaller
// than a cell become a dot.
func (c *Canvas) Draw(scene render.Scene) {
	radius := make(map[string]float64, len(scene.Circles))
	for _, circle := range scene.Circles {
		c.drawCircle(circle)
		radius[circle.ID] = circle.R
	}
	for _, l := range scene.Labels {
		c.drawLabel(l, radius[l.ID])
	}
	if scene.Tooltip != nil {
		c.drawTooltip(*scene.Tooltip)
	}
}

func (c *Canvas) drawCircle(ci render.Circle) {
	fill := ci.Fill.Blend(render.Background, ci.Opacity)
	if ci.Hovered {
		fill = render.Highlight.Blend(fill, hoverMix)
	}
	inside := func(col, row int) bool {
		p := CellCenter(col, row)
		dx, dy := p.X-ci.X, p.Y-ci.Y
		return dx*dx+dy*dy <= ci.R*ci.R
	}

	c0, r0 := cellOf(layout.Point{X: ci.X - ci.R, Y: ci.Y - ci.R})
	c1, r1 := cellOf(layout.Point{X: ci.X + ci.R, Y: ci.Y + ci.R})
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, c.cols-1), min(r1, c.rows-1)

	drawn := false
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if !inside(col, row) {
				continue
			}
			drawn = true
			cl := c.at(col, row)
			rim := !inside(col-1, row) || !inside(col+1, row) || !inside(col, row-1) || !inside(col, row+1)
			cl.ch = ' '
			if rim {
				cl.bg = ci.Stroke
			} else {
				cl.bg = fill
			}
		}
	}
	if !drawn {
		col, row := cellOf(layout.Point{X: ci.X, Y: ci.Y})
		if cl := c.at(col, row); cl != nil {
			cl.ch = '•'
			cl.fg = fill
			if ci.Hovered {
				cl.fg = render.Highlight
			}
		}
	}
}

func (c *Canvas) drawLabel(l render.Label, r float64) {
	col, row := cellOf(layout.Point{X: l.X, Y: l.Y})
	text := FitLabel(l.Text, r)
	c.writeText(col-runewidth.StringWidth(text)/2, row, text, render.LabelColor, nil, false)
}

// FitLabel truncates text to fit a circle of screen radius r.
func FitLabel(text string, r float64) string {
	width := int(2 * r * 0.8 / CellWidth)
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

func (c *Canvas) drawTooltip(t render.TooltipBox) {
	col0, row0 := cellOf(layout.Point{X: t.X, Y: t.Y})
	w := int(math.Ceil(t.Width / CellWidth))
	h := len(t.Lines) + 2

	for row := row0; row < row0+h; row++ {
		for col := col0; col < col0+w; col++ {
			cl := c.at(col, row)
			if cl == nil {
				continue
			}
			cl.bg, cl.fg = tooltipBg, tooltipBorder
			switch {
			case row == row0 && col == col0:
				cl.ch = '╭'
			case row == row0 && col == col0+w-1:
				cl.ch = '╮'
			case row == row0+h-1 && col == col0:
				cl.ch = '╰'
			case row == row0+h-1 && col == col0+w-1:
				cl.ch = '╯'
			case row == row0 || row == row0+h-1:
				cl.ch = '─'
			case col == col0 || col == col0+w-1:
				cl.ch = '│'
			default:
				cl.ch = ' '
			}
		}
	}
	maxWidth := w - 4
	for i, line := range t.Lines {
		line = runewidth.Truncate(line, maxWidth, "…")
		c.writeText(col0+2, row0+1+i, line, render.LabelColor, &tooltipBg, i == 0)
	}
}

// writeText writes text from (col,row), clipping at the canvas edges. A nil
// bg keeps the background already there.
func (c *Canvas) writeText(col, row int, text string, fg render.Color, bg *render.Color, bold bool) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if cl := c.at(col, row); cl != nil && (w == 1 || c.at(col+1, row) != nil) {
			cl.ch, cl.fg, cl.bold = r, fg, bold
			if bg != nil {
				cl.bg = *bg
			}
			if w == 2 {
				next := c.at(col+1, row)
				next.ch, next.bg = 0, cl.bg
			}
		}
		col += w
	}
}

// Plain returns the canvas text without colour, one string per row.
func (c *Canvas) Plain() []string {
	out := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var sb strings.Builder
		for col := 0; col < c.cols; col++ {
			if ch := c.cells[row*c.cols+col].ch; ch != 0 {
				sb.WriteRune(ch)
			}
		}
		out[row] = sb.String()
	}
	return out
}

// Lines renders the canvas as styled rows, one style per run of equal
// cells.
func (c *Canvas) Lines(r *lipgloss.Renderer) []string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	out := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var (
			sb  strings.Builder
			run strings.Builder
			cur cell
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := r.NewStyle().
				Foreground(lipgloss.Color(cur.fg.Hex())).
				Background(lipgloss.Color(cur.bg.Hex())).
				Bold(cur.bold)
			sb.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.ch == 0 {
				continue
			}
			if run.Len() > 0 && (cl.fg != cur.fg || cl.bg != cur.bg || cl.bold != cur.bold) {
				flush()
			}
			cur = cl
			run.WriteRune(cl.ch)
		}
		flush()
		out[row] = sb.String()
	}
	return out
}
