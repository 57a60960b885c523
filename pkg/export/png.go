package export

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/bubblecap/pkg/render"
)

// WritePNG rasterises scene. Labels use the 7x13 bitmap face whatever the
// scene's font size.
func WritePNG(w io.Writer, scene render.Scene) error {
	width, height := px(scene.Size.Width), px(scene.Size.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export png: empty canvas %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	setColor(dc, render.Background, 1)
	dc.Clear()

	dc.SetLineWidth(1)
	for _, c := range scene.Circles {
		dc.DrawCircle(c.X, c.Y, c.R)
		setColor(dc, c.Fill, c.Opacity)
		dc.FillPreserve()
		setColor(dc, c.Stroke, 1)
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	setColor(dc, render.LabelColor, 1)
	for _, l := range scene.Labels {
		dc.DrawStringAnchored(l.Text, l.X, l.Y, 0.5, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func setColor(dc *gg.Context, c render.Color, alpha float64) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(alpha*255+0.5))
}
