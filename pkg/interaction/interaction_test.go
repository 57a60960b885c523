package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/model"
)

var screen = layout.Size{Width: 800, Height: 600}

func TestSurface_EnterMoveLeave(t *testing.T) {
	var s Surface
	assert.Equal(t, Idle, s.State())

	s.Move(layout.Point{X: 1, Y: 1})
	_, ok := s.Pointer()
	assert.False(t, ok, "move while idle is ignored")

	n := layout.Node{ID: "INFY", R: 20}
	s.Enter(n, layout.Point{X: 10, Y: 20})
	got, ok := s.Hovered()
	require.True(t, ok)
	assert.Equal(t, "INFY", got.ID)

	s.Move(layout.Point{X: 11, Y: 22})
	p, _ := s.Pointer()
	assert.Equal(t, layout.Point{X: 11, Y: 22}, p)

	s.Leave()
	assert.Equal(t, Idle, s.State())
	_, ok = s.Hovered()
	assert.False(t, ok)
}

func TestSurface_Track(t *testing.T) {
	var s Surface
	a := &layout.Node{ID: "A"}
	b := &layout.Node{ID: "B"}

	steps := []struct {
		hit  *layout.Node
		want Change
		id   string
	}{
		{nil, NoChange, ""},
		{a, Entered, "A"},
		{a, Moved, "A"},
		{b, Retargeted, "B"},
		{nil, Left, ""},
		{nil, NoChange, ""},
	}
	for i, st := range steps {
		got := s.Track(st.hit, layout.Point{X: float64(i), Y: float64(i)})
		assert.Equal(t, st.want, got, "step %d", i)
		n, _ := s.Hovered()
		assert.Equal(t, st.id, n.ID, "step %d", i)
	}
}

func TestSurface_Reset(t *testing.T) {
	var s Surface
	s.Enter(layout.Node{ID: "A"}, layout.Point{})
	s.Reset()
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, "idle", s.State().String())
}

func TestPlace(t *testing.T) {
	box := layout.Size{Width: 200, Height: 100}

	tests := []struct {
		name   string
		anchor layout.Point
		want   Box
	}{
		{
			name:   "BelowByDefault",
			anchor: layout.Point{X: 400, Y: 100},
			want:   Box{X: 310, Y: 110, Width: 200, Height: 100, Side: Below},
		},
		{
			name:   "FlipsAboveNearBottom",
			anchor: layout.Point{X: 400, Y: 550},
			want:   Box{X: 310, Y: 440, Width: 200, Height: 100, Side: Above},
		},
		{
			name:   "ClampsLeft",
			anchor: layout.Point{X: 5, Y: 100},
			want:   Box{X: 10, Y: 110, Width: 200, Height: 100, Side: Below},
		},
		{
			name:   "ClampsRight",
			anchor: layout.Point{X: 790, Y: 100},
			want:   Box{X: 590, Y: 110, Width: 200, Height: 100, Side: Below},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Place(tt.anchor, box, screen))
		})
	}
}

func TestPlace_StaysBelowWhenNeitherSideFits(t *testing.T) {
	tall := layout.Size{Width: 100, Height: 500}
	got := Place(layout.Point{X: 400, Y: 300}, tall, screen)
	assert.Equal(t, Below, got.Side)
	assert.Equal(t, 310.0, got.Y)
}

func TestTooltip(t *testing.T) {
	c := model.Company{
		Name:      "Reliance Industries Ltd",
		MarketCap: model.NewMarketCap(1734567.6),
		Sector:    "Oil & Gas",
		Industry:  "Refineries",
		ISIN:      "INE002A01018",
		NSESymbol: "RELIANCE",
	}
	assert.Equal(t, []string{
		"Reliance Industries Ltd",
		"₹1,734,568 Cr",
		"Sector: Oil & Gas",
		"Industry: Refineries",
		"ISIN: INE002A01018",
		"NSE: RELIANCE",
		"BSE: -",
	}, Tooltip(c))
}

func TestFormatCrore(t *testing.T) {
	assert.Equal(t, "₹999 Cr", FormatCrore(model.NewMarketCap(999)))
	assert.Equal(t, "₹1,000 Cr", FormatCrore(model.NewMarketCap(999.5)))
	assert.Equal(t, "₹- Cr", FormatCrore(model.MarketCap{}))
}
