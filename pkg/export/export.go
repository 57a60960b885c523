// Package export writes static snapshots of the chart.
//
// A snapshot is the home view of the packed dataset, or the view framed on
// one company, rendered to SVG (ajstarks/svgo) or PNG (gg).
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/model"
	"github.com/vanderheijden86/bubblecap/pkg/render"
	"github.com/vanderheijden86/bubblecap/pkg/viewport"
)

// ErrEmpty is returned when the dataset has no company with a valid market
// cap to draw.
var ErrEmpty = errors.New("nothing to export")

// Format is an output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want svg or png)", s)
	}
}

// Options configures a snapshot. Zero values select the defaults.
type Options struct {
	Size           layout.Size
	Padding        float64
	LabelThreshold float64
	// Focus names a company (identifier or display name). Empty means the
	// home view.
	Focus string
}

// DefaultSize is the snapshot size when Options.Size is zero.
var DefaultSize = layout.Size{Width: 1200, Height: 800}

// Snapshot lays out ds and returns the scene for the requested view.
func Snapshot(ds *model.Dataset, opts Options) (render.Scene, error) {
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Padding <= 0 {
		opts.Padding = layout.DefaultPadding
	}

	h := layout.Compute(ds, opts.Size, opts.Padding)
	if h.Empty() {
		return render.Scene{}, ErrEmpty
	}

	cam := viewport.New(h.Size, h.Root, viewport.Config{LabelThreshold: opts.LabelThreshold})
	defer cam.Close()
	if opts.Focus != "" {
		n, ok := h.FindByName(opts.Focus)
		if !ok {
			return render.Scene{}, fmt.Errorf("focus %q: %w", opts.Focus, model.ErrNotFound)
		}
		cam.ZoomTo(n.Center(), n.R, 0)
	}
	return render.Frame(h, cam, nil, render.Options{}), nil
}

// Write encodes scene in format f.
func Write(w io.Writer, f Format, scene render.Scene) error {
	switch f {
	case FormatSVG:
		return WriteSVG(w, scene)
	case FormatPNG:
		return WritePNG(w, scene)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteFile encodes scene to path, creating parent directories.
func WriteFile(path string, f Format, scene render.Scene) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, f, scene); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DefaultFilename creates an auto-generated filename
// Format: bubblecap_{YYYYMMDD}_{HHMMSS}[_{focus}].{ext}
func DefaultFilename(focus string, f Format, now time.Time) string {
	name := "bubblecap_" + now.Format("20060102_150405")
	if focus = strings.TrimSpace(focus); focus != "" {
		safe := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ".", "_").Replace(focus)
		name += "_" + strings.ToLower(safe)
	}
	return name + "." + string(f)
}
