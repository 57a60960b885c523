// Package render turns the layout, camera and hover state into a flat list
// of screen-space draw commands. Backends (terminal, SVG, PNG) only draw
// what a Scene contains.
package render

import (
	"unicode/utf8"

	"github.com/vanderheijden86/bubblecap/pkg/interaction"
	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/viewport"
)

// Defaults for Options.
const (
	DefaultFontSize    = 10.0
	DefaultFillOpacity = 0.7
)

// Camera is the part of the viewport controller a frame needs.
type Camera interface {
	Transform() viewport.Transform
	LabelVisible(r float64) bool
}

// Circle is one bubble in screen space.
type Circle struct {
	ID      string
	X, Y, R float64
	Fill    Color
	Opacity float64
	Stroke  Color
	Hovered bool
	Sector  string
}

// Label is a centred text run in screen space. Size is the font size and
// does not change with zoom.
type Label struct {
	ID   string
	X, Y float64
	Text string
	Size float64
}

// TooltipBox is the placed tooltip and its text lines.
type TooltipBox struct {
	interaction.Box
	Lines []string
}

// Scene is one frame of draw commands.
type Scene struct {
	Size      layout.Size
	Transform viewport.Transform
	Circles   []Circle
	Labels    []Label
	Tooltip   *TooltipBox
}

// Options tune frame generation. Zero values select the defaults.
type Options struct {
	FontSize    float64
	FillOpacity float64
	Palette     []Color
	// Measure returns the tooltip size for its lines. The default assumes
	// a proportional font of FontSize.
	Measure func(lines []string) layout.Size
}

func (o Options) withDefaults() Options {
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.FillOpacity <= 0 {
		o.FillOpacity = DefaultFillOpacity
	}
	if len(o.Palette) == 0 {
		o.Palette = Tableau10
	}
	if o.Measure == nil {
		fs := o.FontSize
		o.Measure = func(lines []string) layout.Size {
			return MeasureText(lines, fs*0.6, fs*1.6, 16, 12)
		}
	}
	return o
}

// MeasureText estimates a text block: widest line times charWidth plus
// horizontal padding, line count times lineHeight plus vertical padding.
func MeasureText(lines []string, charWidth, lineHeight, padX, padY float64) layout.Size {
	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}
	return layout.Size{
		Width:  float64(widest)*charWidth + 2*padX,
		Height: float64(len(lines))*lineHeight + 2*padY,
	}
}

// Frame builds the scene for hierarchy h seen through cam. hover may be
// nil.
func Frame(h *layout.Hierarchy, cam Camera, hover *interaction.Surface, opts Options) Scene {
	opts = opts.withDefaults()
	t := cam.Transform()

	var size layout.Size
	if h != nil {
		size = h.Size
	}
	scene := Scene{Size: size, Transform: t}
	if h.Empty() {
		return scene
	}

	var hoveredID string
	if hover != nil {
		if n, ok := hover.Hovered(); ok {
			hoveredID = n.ID
		}
	}

	colors := NewOrdinal(opts.Palette)
	for _, n := range h.Leaves {
		fill := colors.Color(n.Record.Sector)
		c := t.Apply(n.Center())
		r := t.ScaleRadius(n.R)
		if !visible(c, r, size) {
			continue
		}

		scene.Circles = append(scene.Circles, Circle{
			ID:      n.ID,
			X:       c.X,
			Y:       c.Y,
			R:       r,
			Fill:    fill,
			Opacity: opts.FillOpacity,
			Stroke:  Stroke,
			Hovered: n.ID == hoveredID,
			Sector:  n.Record.Sector,
		})

		if cam.LabelVisible(n.R) {
			text := n.Record.Name
			if text == "" {
				text = n.ID
			}
			scene.Labels = append(scene.Labels, Label{ID: n.ID, X: c.X, Y: c.Y, Text: text, Size: opts.FontSize})
		}
	}

	if hover != nil {
		n, ok := hover.Hovered()
		p, _ := hover.Pointer()
		if ok {
			lines := interaction.Tooltip(n.Record)
			box := interaction.Place(p, opts.Measure(lines), size)
			scene.Tooltip = &TooltipBox{Box: box, Lines: lines}
		}
	}
	return scene
}

// visible reports whether a circle overlaps the viewport rectangle.
func visible(c layout.Point, r float64, size layout.Size) bool {
	return c.X+r >= 0 && c.X-r <= size.Width && c.Y+r >= 0 && c.Y-r <= size.Height
}
