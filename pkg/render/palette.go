package render

import "fmt"

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Blend mixes c over bg with the given opacity.
func (c Color) Blend(bg Color, opacity float64) Color {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*opacity + float64(b)*(1-opacity) + 0.5)
	}
	return Color{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B)}
}

// Tableau10 is the ten-colour categorical palette used for sectors.
var Tableau10 = []Color{
	{0x4e, 0x79, 0xa7},
	{0xf2, 0x8e, 0x2c},
	{0xe1, 0x57, 0x59},
	{0x76, 0xb7, 0xb2},
	{0x59, 0xa1, 0x4f},
	{0xed, 0xc9, 0x49},
	{0xaf, 0x7a, 0xa1},
	{0xff, 0x9d, 0xa7},
	{0x9c, 0x75, 0x5f},
	{0xba, 0xb0, 0xab},
}

// Fixed chart colours.
var (
	Background = Color{0x00, 0x00, 0x00}
	Stroke     = Color{0x1d, 0x4e, 0xd8}
	LabelColor = Color{0xff, 0xff, 0xff}
	Highlight  = Color{0xff, 0xff, 0xff}
)

// Ordinal assigns palette colours to keys in first-seen order, cycling
// when the palette runs out.
type Ordinal struct {
	palette []Color
	index   map[string]int
}

// NewOrdinal returns an ordinal scale over palette.
func NewOrdinal(palette []Color) *Ordinal {
	return &Ordinal{palette: palette, index: make(map[string]int)}
}

// Color returns the colour for key.
func (o *Ordinal) Color(key string) Color {
	i, ok := o.index[key]
	if !ok {
		i = len(o.index)
		o.index[key] = i
	}
	return o.palette[i%len(o.palette)]
}
