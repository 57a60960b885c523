// Package layout packs companies into a flat circle-packing hierarchy.
//
// Every company with a valid market cap becomes one leaf whose area is
// proportional to its market cap. Leaves are direct children of a single
// synthetic root; there is no sector grouping. The packing follows the d3
// pack algorithm (front-chain sibling packing plus a minimum enclosing
// circle) and is fully deterministic.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

const (
	// DefaultPadding is the gap kept between sibling circles, in screen units.
	DefaultPadding = 3.0
	// Margin is trimmed from every side of the viewport before packing.
	Margin = 1.0
)

// Size is a viewport extent.
type Size struct {
	Width  float64
	Height float64
}

// Min returns the shorter side.
func (s Size) Min() float64 {
	return math.Min(s.Width, s.Height)
}

// Center returns the midpoint of the extent.
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Point is a position in hierarchy (or screen) space.
type Point struct {
	X float64
	Y float64
}

// Node is a packed circle. The root node has an empty ID and zero weight.
type Node struct {
	ID     string
	Weight float64
	Record model.Company
	X      float64
	Y      float64
	R      float64
}

// Center returns the node centre.
func (n Node) Center() Point {
	return Point{X: n.X, Y: n.Y}
}

// Contains reports whether p lies inside the circle.
func (n Node) Contains(p Point) bool {
	dx, dy := p.X-n.X, p.Y-n.Y
	return dx*dx+dy*dy <= n.R*n.R
}

// Hierarchy is the result of a layout pass. It is replaced wholesale on
// resize or dataset change and never mutated afterwards.
type Hierarchy struct {
	Root    Node
	Leaves  []Node
	Size    Size
	Padding float64

	byID map[string]int
}

// Compute packs the valid records of ds into a circle of diameter
// min(width, height) - 2*Margin centred in size.
func Compute(ds *model.Dataset, size Size, padding float64) *Hierarchy {
	area := Size{Width: size.Width - 2*Margin, Height: size.Height - 2*Margin}
	center := size.Center()

	h := &Hierarchy{
		Root:    Node{X: center.X, Y: center.Y},
		Size:    size,
		Padding: padding,
		byID:    make(map[string]int),
	}

	h.Leaves = collectLeaves(ds)
	if len(h.Leaves) == 0 {
		return h
	}

	circles := make([]*circle, len(h.Leaves))
	for i := range h.Leaves {
		circles[i] = &circle{r: math.Sqrt(h.Leaves[i].Weight)}
	}

	rnd := newLCG()
	rootR := packSiblings(circles, rnd)

	side := area.Min()
	if side > 0 && padding > 0 {
		inflate := padding * rootR / side
		for _, c := range circles {
			c.r += inflate
		}
		e := packSiblings(circles, rnd)
		for _, c := range circles {
			c.r -= inflate
		}
		rootR = e + inflate
	}

	scale := 0.0
	if side > 0 && rootR > 0 {
		scale = side / (2 * rootR)
	}

	h.Root.R = rootR * scale
	for i, c := range circles {
		leaf := &h.Leaves[i]
		leaf.X = center.X + c.x*scale
		leaf.Y = center.Y + c.y*scale
		leaf.R = c.r * scale
		h.byID[leaf.ID] = i
	}
	return h
}

// collectLeaves filters out invalid market caps and orders leaves by weight
// descending, then identifier.
func collectLeaves(ds *model.Dataset) []Node {
	leaves := make([]Node, 0, ds.Len())
	ds.Each(func(id string, c model.Company) bool {
		if c.MarketCap.Valid() {
			leaves = append(leaves, Node{ID: id, Weight: c.MarketCap.Value(), Record: c})
		}
		return true
	})
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].Weight != leaves[j].Weight {
			return leaves[i].Weight > leaves[j].Weight
		}
		return leaves[i].ID < leaves[j].ID
	})
	return leaves
}

// Empty reports whether the layout has no leaves.
func (h *Hierarchy) Empty() bool {
	return h == nil || len(h.Leaves) == 0
}

// Find returns the leaf with the given identifier.
func (h *Hierarchy) Find(id string) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	i, ok := h.byID[id]
	if !ok {
		return nil, false
	}
	return &h.Leaves[i], true
}

// FindByName resolves a committed search string to a leaf: identifier first,
// then display name, both case-insensitive and whitespace-trimmed.
func (h *Hierarchy) FindByName(name string) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return nil, false
	}
	for i := range h.Leaves {
		if strings.ToLower(h.Leaves[i].ID) == q {
			return &h.Leaves[i], true
		}
	}
	for i := range h.Leaves {
		if strings.ToLower(h.Leaves[i].Record.Name) == q {
			return &h.Leaves[i], true
		}
	}
	return nil, false
}

// At returns the smallest leaf containing p (hierarchy coordinates).
func (h *Hierarchy) At(p Point) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	var best *Node
	for i := range h.Leaves {
		n := &h.Leaves[i]
		if n.Contains(p) && (best == nil || n.R < best.R) {
			best = n
		}
	}
	return best, best != nil
}
