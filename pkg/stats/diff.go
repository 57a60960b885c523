package stats

import (
	"math"
	"sort"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// DefaultMoveThreshold is the relative market cap change reported as a move.
const DefaultMoveThreshold = 0.05

// Move is a company whose market cap changed between two datasets.
type Move struct {
	ID     string  `json:"id"`
	Old    float64 `json:"old"`
	New    float64 `json:"new"`
	Change float64 `json:"change"` // relative, (new-old)/old
}

// Changes is the difference between two loads of a dataset.
type Changes struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Moves   []Move   `json:"moves,omitempty"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Moves) == 0
}

// Diff compares prev and next. Companies whose valid market cap changed by
// at least threshold (relative) are listed as moves, largest first.
func Diff(prev, next *model.Dataset, threshold float64) Changes {
	if threshold <= 0 {
		threshold = DefaultMoveThreshold
	}
	var out Changes

	next.Each(func(id string, c model.Company) bool {
		old, ok := prev.Get(id)
		if !ok {
			out.Added = append(out.Added, id)
			return true
		}
		if !old.MarketCap.Valid() || !c.MarketCap.Valid() {
			return true
		}
		o, n := old.MarketCap.Value(), c.MarketCap.Value()
		change := (n - o) / o
		if math.Abs(change) >= threshold {
			out.Moves = append(out.Moves, Move{ID: id, Old: o, New: n, Change: change})
		}
		return true
	})
	prev.Each(func(id string, _ model.Company) bool {
		if _, ok := next.Get(id); !ok {
			out.Removed = append(out.Removed, id)
		}
		return true
	})

	sort.SliceStable(out.Moves, func(i, j int) bool {
		return math.Abs(out.Moves[i].Change) > math.Abs(out.Moves[j].Change)
	})
	return out
}
