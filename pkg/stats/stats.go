// Package stats summarises a dataset's market caps and compares datasets
// across reloads.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// UnknownSector groups companies without a sector name.
const UnknownSector = "Unknown"

// SectorShare is one sector's slice of the total market cap.
type SectorShare struct {
	Sector    string  `json:"sector"`
	Companies int     `json:"companies"`
	MarketCap float64 `json:"mcap"`
	Share     float64 `json:"share"`
}

// Summary describes a dataset. Market cap figures only count valid values.
type Summary struct {
	Count   int           `json:"count"`
	Valid   int           `json:"valid"`
	Total   float64       `json:"total"`
	Mean    float64       `json:"mean"`
	Median  float64       `json:"median"`
	StdDev  float64       `json:"stddev"`
	Largest []Largest     `json:"largest"`
	Sectors []SectorShare `json:"sectors"`
}

// Largest is an entry of the top-N list.
type Largest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"mcap"`
}

// DefaultTopN is the length of Summary.Largest.
const DefaultTopN = 10

// Summarize computes the summary of ds with the topN largest companies.
func Summarize(ds *model.Dataset, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	s := Summary{Count: ds.Len()}

	var (
		caps    []float64
		largest []Largest
		sectors = map[string]*SectorShare{}
	)
	ds.Each(func(id string, c model.Company) bool {
		if !c.MarketCap.Valid() {
			return true
		}
		v := c.MarketCap.Value()
		caps = append(caps, v)
		largest = append(largest, Largest{ID: id, Name: c.Name, MarketCap: v})

		name := c.Sector
		if name == "" {
			name = UnknownSector
		}
		sec, ok := sectors[name]
		if !ok {
			sec = &SectorShare{Sector: name}
			sectors[name] = sec
		}
		sec.Companies++
		sec.MarketCap += v
		return true
	})

	s.Valid = len(caps)
	if s.Valid == 0 {
		return s
	}

	s.Total = floats.Sum(caps)
	s.Mean = stat.Mean(caps, nil)
	if s.Valid > 1 {
		s.StdDev = stat.StdDev(caps, nil)
	}
	sorted := append([]float64(nil), caps...)
	sort.Float64s(sorted)
	s.Median = median(sorted)

	sort.SliceStable(largest, func(i, j int) bool { return largest[i].MarketCap > largest[j].MarketCap })
	if len(largest) > topN {
		largest = largest[:topN]
	}
	s.Largest = largest

	for _, sec := range sectors {
		sec.Share = sec.MarketCap / s.Total
		s.Sectors = append(s.Sectors, *sec)
	}
	sort.Slice(s.Sectors, func(i, j int) bool {
		if s.Sectors[i].MarketCap != s.Sectors[j].MarketCap {
			return s.Sectors[i].MarketCap > s.Sectors[j].MarketCap
		}
		return s.Sectors[i].Sector < s.Sectors[j].Sector
	})
	return s
}

// median of sorted values, averaging the middle pair for even lengths.
// stat.Quantile with Empirical picks the lower middle, so the even case is
// averaged here.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
