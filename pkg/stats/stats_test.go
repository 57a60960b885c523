package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

func dataset() *model.Dataset {
	ds := model.NewDataset()
	ds.Add("A", model.Company{Name: "Alpha", Sector: "Energy", MarketCap: model.NewMarketCap(600)})
	ds.Add("B", model.Company{Name: "Beta", Sector: "Finance", MarketCap: model.NewMarketCap(300)})
	ds.Add("C", model.Company{Name: "Gamma", Sector: "Energy", MarketCap: model.NewMarketCap(60)})
	ds.Add("D", model.Company{Name: "Delta", MarketCap: model.NewMarketCap(40)})
	ds.Add("E", model.Company{Name: "Epsilon", Sector: "Finance"})
	ds.Add("F", model.Company{Name: "Zeta", Sector: "Finance", MarketCap: model.NewMarketCap(-5)})
	return ds
}

func TestSummarize(t *testing.T) {
	s := Summarize(dataset(), 2)

	assert.Equal(t, 6, s.Count)
	assert.Equal(t, 4, s.Valid)
	assert.InDelta(t, 1000, s.Total, 1e-9)
	assert.InDelta(t, 250, s.Mean, 1e-9)
	assert.InDelta(t, 180, s.Median, 1e-9, "even count averages the middle pair")
	assert.Greater(t, s.StdDev, 0.0)

	require.Len(t, s.Largest, 2)
	assert.Equal(t, "A", s.Largest[0].ID)
	assert.Equal(t, "B", s.Largest[1].ID)

	require.Len(t, s.Sectors, 3)
	assert.Equal(t, SectorShare{Sector: "Energy", Companies: 2, MarketCap: 660, Share: 0.66}, s.Sectors[0])
	assert.Equal(t, "Finance", s.Sectors[1].Sector)
	assert.Equal(t, 1, s.Sectors[1].Companies, "invalid market caps are not counted")
	assert.Equal(t, UnknownSector, s.Sectors[2].Sector)

	var share float64
	for _, sec := range s.Sectors {
		share += sec.Share
	}
	assert.InDelta(t, 1.0, share, 1e-12)
}

func TestSummarize_OddMedian(t *testing.T) {
	ds := model.DatasetOf(
		model.Company{Name: "a", MarketCap: model.NewMarketCap(1)},
		model.Company{Name: "b", MarketCap: model.NewMarketCap(9)},
		model.Company{Name: "c", MarketCap: model.NewMarketCap(5)},
	)
	assert.Equal(t, 5.0, Summarize(ds, 0).Median)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(model.NewDataset(), 0)
	assert.Equal(t, Summary{}, s)

	s = Summarize(model.DatasetOf(model.Company{Name: "x"}), 0)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0, s.Valid)
	assert.Empty(t, s.Sectors)
}

func TestDiff(t *testing.T) {
	prev := dataset()
	next := model.NewDataset()
	next.Add("A", model.Company{Name: "Alpha", MarketCap: model.NewMarketCap(630)}) // +5%
	next.Add("B", model.Company{Name: "Beta", MarketCap: model.NewMarketCap(150)})  // -50%
	next.Add("C", model.Company{Name: "Gamma", MarketCap: model.NewMarketCap(61)})  // below threshold
	next.Add("E", model.Company{Name: "Epsilon", MarketCap: model.NewMarketCap(10)})
	next.Add("G", model.Company{Name: "Eta", MarketCap: model.NewMarketCap(10)})

	ch := Diff(prev, next, 0)
	assert.Equal(t, []string{"G"}, ch.Added)
	assert.Equal(t, []string{"D", "F"}, ch.Removed)
	require.Len(t, ch.Moves, 2)
	assert.Equal(t, "B", ch.Moves[0].ID)
	assert.InDelta(t, -0.5, ch.Moves[0].Change, 1e-12)
	assert.Equal(t, "A", ch.Moves[1].ID)
	assert.False(t, ch.Empty())
}

func TestDiff_Identical(t *testing.T) {
	assert.True(t, Diff(dataset(), dataset(), 0).Empty())
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, Diff(model.NewDataset(), dataset(), 0).Added)
}

func TestMarkdown(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	md := Markdown(Summarize(dataset(), 0), "Market caps", now)

	assert.True(t, strings.HasPrefix(md, "# Market caps\n"))
	assert.Contains(t, md, "- **Companies**: 6")
	assert.Contains(t, md, "- **Total**: ₹1,000 Cr")
	assert.Contains(t, md, "| 1 | Alpha | ₹600 Cr |")
	assert.Contains(t, md, "| Energy | 2 | ₹660 Cr | 66.0% |")
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	ds := model.DatasetOf(model.Company{Name: "A|B", Sector: "X|Y", MarketCap: model.NewMarketCap(1)})
	md := Markdown(Summarize(ds, 0), "t", time.Now())
	assert.Contains(t, md, `A\|B`)
	assert.Contains(t, md, `X\|Y`)
}

func TestRender(t *testing.T) {
	out, err := Render(Markdown(Summarize(dataset(), 0), "Market caps", time.Now()), 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Market caps")
	assert.Contains(t, out, "Alpha")
}
