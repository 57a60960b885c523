package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/bubblecap/pkg/render"
)

// WriteSVG draws scene as a standalone SVG document.
func WriteSVG(w io.Writer, scene render.Scene) error {
	width, height := px(scene.Size.Width), px(scene.Size.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export svg: empty canvas %dx%d", width, height)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+render.Background.Hex())

	canvas.Gid("bubbles")
	for _, c := range scene.Circles {
		r := px(c.R)
		if r <= 0 {
			continue
		}
		style := fmt.Sprintf("fill:%s;fill-opacity:%g;stroke:%s;stroke-width:1",
			c.Fill.Hex(), c.Opacity, c.Stroke.Hex())
		canvas.Circle(px(c.X), px(c.Y), r, style)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, l := range scene.Labels {
		style := fmt.Sprintf("fill:%s;font-size:%gpx;font-family:sans-serif;text-anchor:middle;dominant-baseline:central",
			render.LabelColor.Hex(), l.Size)
		canvas.Text(px(l.X), px(l.Y), l.Text, style)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}
