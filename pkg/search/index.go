// Package search implements the fuzzy company search box: a ranked
// approximate-match index over the dataset and the debounced session model
// that sits between keystrokes and the camera.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// Field names a searchable record attribute.
type Field string

// Searchable fields, named after the dataset's JSON keys.
const (
	FieldName Field = "companyname"
	FieldNSE  Field = "nsesymbol"
	FieldBSE  Field = "bsecode"
	FieldISIN Field = "isin"
)

const (
	// DefaultLimit caps the number of suggestions.
	DefaultLimit = 8
	// DefaultThreshold is the worst per-field score still counted as a hit.
	DefaultThreshold = 0.25

	defaultDistance = 100
)

type key struct {
	field  Field
	weight float64
	get    func(model.Company) string
}

// keys lists fields with their raw weights; weights are normalized by their
// sum when the index is built.
var keys = []key{
	{FieldName, 0.6, func(c model.Company) string { return c.Name }},
	{FieldNSE, 0.3, func(c model.Company) string { return string(c.NSESymbol) }},
	{FieldBSE, 0.1, func(c model.Company) string { return string(c.BSECode) }},
	{FieldISIN, 0.1, func(c model.Company) string { return c.ISIN }},
}

// Match is one ranked search result.
type Match struct {
	ID     string
	Record model.Company
	Score  float64
	Ranges map[Field][]Range
}

type fieldValue struct {
	text  []rune
	norm  float64
	valid bool
}

type entry struct {
	id     string
	record model.Company
	fields []fieldValue
}

// Index is an immutable search index over a dataset.
type Index struct {
	entries   []entry
	weights   []float64
	threshold float64
	distance  int
}

// Build indexes every record of ds, including records without a valid
// market cap.
func Build(ds *model.Dataset) *Index {
	idx := &Index{
		threshold: DefaultThreshold,
		distance:  defaultDistance,
		weights:   make([]float64, len(keys)),
	}

	var total float64
	for _, k := range keys {
		total += k.weight
	}
	for i, k := range keys {
		idx.weights[i] = k.weight / total
	}

	ds.Each(func(id string, c model.Company) bool {
		e := entry{id: id, record: c, fields: make([]fieldValue, len(keys))}
		for i, k := range keys {
			v := k.get(c)
			if strings.TrimSpace(v) == "" {
				continue
			}
			e.fields[i] = fieldValue{text: []rune(strings.ToLower(v)), norm: fieldNorm(v), valid: true}
		}
		idx.entries = append(idx.entries, e)
		return true
	})
	return idx
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// fieldNorm penalizes long fields: 1/sqrt(tokens), rounded to 3 decimals.
func fieldNorm(v string) float64 {
	tokens := len(strings.FieldsFunc(v, func(r rune) bool { return r == ' ' }))
	if tokens == 0 {
		tokens = 1
	}
	n := 1 / math.Sqrt(float64(tokens))
	return math.Round(n*1000) / 1000
}

// Query returns up to DefaultLimit matches for text.
func (x *Index) Query(text string) []Match {
	return x.QueryN(text, DefaultLimit)
}

// QueryN returns up to limit matches ordered by score ascending, then
// market cap descending, then identifier. A limit <= 0 returns every match.
func (x *Index) QueryN(text string, limit int) []Match {
	if x == nil || strings.TrimFunc(text, unicode.IsSpace) == "" {
		return nil
	}

	m := newMatcher([]rune(strings.ToLower(text)), bitapOptions{
		distance:  x.distance,
		threshold: x.threshold,
	})

	var out []Match
	for _, e := range x.entries {
		score := 1.0
		var ranges map[Field][]Range
		for i, f := range e.fields {
			if !f.valid {
				continue
			}
			r := m.match(f.text)
			if !r.isMatch {
				continue
			}
			s := r.score
			if s == 0 {
				s = epsilon
			}
			score *= math.Pow(s, x.weights[i]*f.norm)
			if ranges == nil {
				ranges = make(map[Field][]Range)
			}
			ranges[keys[i].field] = r.ranges
		}
		if ranges == nil {
			continue
		}
		out = append(out, Match{ID: e.id, Record: e.record, Score: score, Ranges: ranges})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		am, bm := mcapOrZero(a.Record), mcapOrZero(b.Record)
		if am != bm {
			return am > bm
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// epsilon replaces an exact-match field score of 0 in the record product.
const epsilon = 2.220446049250313e-16

func mcapOrZero(c model.Company) float64 {
	if !c.MarketCap.IsNumber() {
		return 0
	}
	v := c.MarketCap.Value()
	if math.IsNaN(v) {
		return 0
	}
	return v
}
