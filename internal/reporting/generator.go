package reporting

import (
	"time"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/ingestion"
	"rpi-index-lab/internal/lookup"
)

// Generator produces reports from an explorer.
type Generator struct {
	explorer   *explorer.Explorer
	indexStats ingestion.NormalizeStats
	priceStats ingestion.NormalizeStats
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(exp *explorer.Explorer, indexStats, priceStats ingestion.NormalizeStats) *Generator {
	return &Generator{
		explorer:   exp,
		indexStats: indexStats,
		priceStats: priceStats,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate plots [start, end] against the explorer's current state.
// A non-nil sel adds a price lookup to the report.
func (g *Generator) Generate(start, end domain.Period, sel *lookup.Selection) *Report {
	plot := g.explorer.Plot(start, end)

	r := &Report{
		GeneratedAt: g.now(),
		Base:        plot.Base,
		Rebased:     plot.Rebased,
		Start:       start,
		End:         end,
		Summary:     plot.Summary,
		Series:      plot.Assembled,
		DataSummary: g.dataSummary(),
	}

	if sel != nil {
		res := g.explorer.Price(*sel)
		r.Price = &PriceRow{
			Town:     sel.Town,
			FlatType: sel.FlatType,
			Period:   domain.Period{Year: sel.Year, Quarter: sel.Quarter},
			Text:     res.Text,
			Hint:     res.Hint,
			Found:    res.Found,
		}
	}

	return r
}

func (g *Generator) dataSummary() DataSummary {
	sel := g.explorer.Selectors()
	ds := DataSummary{
		IndexStats: g.indexStats,
		PriceStats: g.priceStats,
		Towns:      len(sel.Towns),
		FlatTypes:  len(sel.FlatTypes),
	}
	if first, last, ok := g.explorer.Coverage(); ok {
		ds.FirstPeriod = first.Label()
		ds.LastPeriod = last.Label()
	}
	return ds
}
