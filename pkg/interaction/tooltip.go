package interaction

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// TooltipOffset is the gap between pointer and tooltip, and the minimum
// distance the tooltip keeps from the viewport edges.
const TooltipOffset = 10.0

// Side says where the tooltip sits relative to the pointer.
type Side int

const (
	Below Side = iota
	Above
)

func (s Side) String() string {
	if s == Above {
		return "above"
	}
	return "below"
}

// Box is a placed tooltip rectangle, top-left origin.
type Box struct {
	X, Y          float64
	Width, Height float64
	Side          Side
}

// Place positions a tooltip of size box for a pointer at anchor. The
// tooltip goes below the pointer unless it does not fit there and does fit
// above. Horizontally it is centred on anchor.X+offset and kept offset
// units inside the viewport.
func Place(anchor layout.Point, box, viewport layout.Size) Box {
	spaceBelow := viewport.Height - anchor.Y
	spaceAbove := anchor.Y

	side := Below
	if spaceBelow < box.Height+TooltipOffset && spaceAbove > box.Height+TooltipOffset {
		side = Above
	}

	center := anchor.X + TooltipOffset
	if center-box.Width/2 < TooltipOffset {
		center = TooltipOffset + box.Width/2
	} else if center+box.Width/2 > viewport.Width-TooltipOffset {
		center = viewport.Width - TooltipOffset - box.Width/2
	}

	top := anchor.Y + TooltipOffset
	if side == Above {
		top = anchor.Y - box.Height - TooltipOffset
	}

	return Box{X: center - box.Width/2, Y: top, Width: box.Width, Height: box.Height, Side: side}
}

// Tooltip returns the tooltip text for a company, one entry per line.
func Tooltip(c model.Company) []string {
	return []string{
		c.Name,
		FormatCrore(c.MarketCap),
		"Sector: " + c.Sector,
		"Industry: " + c.Industry,
		"ISIN: " + c.ISIN,
		"NSE: " + c.NSESymbol.String(),
		"BSE: " + c.BSECode.String(),
	}
}

// FormatCrore renders a market cap as rupees in crore with thousands
// separators, rounded to the nearest whole crore.
func FormatCrore(m model.MarketCap) string {
	if !m.IsNumber() || math.IsNaN(m.Value()) || math.IsInf(m.Value(), 0) {
		return "₹- Cr"
	}
	return "₹" + humanize.Comma(int64(math.Round(m.Value()))) + " Cr"
}
