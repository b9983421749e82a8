// Package explorer ties the rebasing engine, range selection and price lookup
// together behind the operations a chart UI needs.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/lookup"
	"rpi-index-lab/internal/observability"
	"rpi-index-lab/internal/rebase"
	"rpi-index-lab/internal/series"
)

// Placeholder texts of the price panel.
const (
	PricePlaceholder = "—"
	HintIncomplete   = "Select all fields to see the price."
	HintNotFound     = "No matching price found."
	HintNoRange      = "Select a range to plot"
)

// Options configures an Explorer.
type Options struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider // nil disables tracing
}

// Explorer owns the index store and the price table.
type Explorer struct {
	index  *rebase.IndexStore
	prices *lookup.PriceTable
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers []func(BaseChange)
}

// BaseChange is published after every successful rebase.
type BaseChange struct {
	Base    domain.Period
	Version uint64
}

// New builds an Explorer over normalized records.
func New(indexRecords []domain.IndexRecord, priceRecords []domain.PriceRecord, opts Options) (*Explorer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Explorer{
		prices: lookup.NewPriceTable(priceRecords),
		logger: logger.With(slog.String("component", "explorer")),
	}

	storeOpts := []rebase.Option{
		rebase.WithLogger(logger),
		rebase.OnRebase(e.publish),
	}
	if opts.TracerProvider != nil {
		storeOpts = append(storeOpts, rebase.WithTracerProvider(opts.TracerProvider))
	}

	store, err := rebase.NewIndexStore(indexRecords, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("build index store: %w", err)
	}
	e.index = store

	return e, nil
}

// Subscribe registers fn to receive base changes. The returned func unsubscribes.
func (e *Explorer) Subscribe(fn func(BaseChange)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
	idx := len(e.subscribers) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.subscribers[idx] = nil
	}
}

func (e *Explorer) publish(snap *rebase.Snapshot) {
	e.mu.RLock()
	subs := make([]func(BaseChange), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	e.mu.RUnlock()

	change := BaseChange{Base: snap.Base, Version: snap.Version}
	for _, fn := range subs {
		fn(change)
	}
}

// BasePeriod returns the active base, or the default before any rebase.
func (e *Explorer) BasePeriod() domain.Period {
	return e.index.BasePeriod()
}

// Rebased reports whether a base has been applied.
func (e *Explorer) Rebased() bool {
	return e.index.Snapshot() != nil
}

// SetBase rebases the index series. On failure the previous state stays active
// and the error wraps one of the rebase sentinels.
func (e *Explorer) SetBase(ctx context.Context, p domain.Period) error {
	start := time.Now()
	snap, err := e.index.Rebase(ctx, p)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		observability.RecordRebase(rebaseResult(err), elapsed, 0, 0)
		e.logger.Warn("base period rejected",
			slog.String("base", p.Label()),
			slog.String("error", err.Error()))
		return err
	}

	observability.RecordRebase(observability.ResultOK, elapsed, p.Ordinal(), snap.Version)
	e.logger.Info("base period applied",
		slog.String("base", p.Label()),
		slog.Uint64("version", snap.Version))
	return nil
}

func rebaseResult(err error) string {
	switch {
	case errors.Is(err, rebase.ErrBaseNotFound):
		return observability.ResultNotFound
	case errors.Is(err, rebase.ErrDegenerateBase):
		return observability.ResultDegenerate
	default:
		return observability.ResultInvalid
	}
}

// NearestBase suggests the closest available quarter at or before p.
func (e *Explorer) NearestBase(p domain.Period) (domain.Period, bool) {
	rec, err := lookup.NearestIndexAt(p, e.index.Records())
	if err != nil {
		return domain.Period{}, false
	}
	return rec.Period(), true
}

// PlotResult is the output of a range selection.
type PlotResult struct {
	Chart     series.ChartData
	Summary   string
	Base      domain.Period
	Rebased   bool
	Assembled series.Assembled
}

// Plot selects the records between start and end and assembles them against
// the active snapshot, or the published values before any rebase.
func (e *Explorer) Plot(start, end domain.Period) PlotResult {
	view := e.index.View()
	base := domain.DefaultBasePeriod
	if view.Snapshot != nil {
		base = view.Snapshot.Base
	}

	records := series.SelectRange(view.Records, start, end)
	assembled := series.Assemble(records, series.FromView(view))
	observability.RecordRangeSelection(assembled.Len())

	return PlotResult{
		Chart:     series.Chart(assembled),
		Summary:   series.Summary(assembled, base),
		Base:      base,
		Rebased:   view.Snapshot != nil,
		Assembled: assembled,
	}
}

// PriceResult is the text shown by the price panel.
type PriceResult struct {
	Text   string
	Hint   string
	Found  bool
	Record *domain.PriceRecord
}

// Price looks up a median price for a complete selection.
func (e *Explorer) Price(sel lookup.Selection) PriceResult {
	if !sel.Complete() {
		observability.RecordPriceLookup(observability.ResultIncomplete)
		return PriceResult{Text: PricePlaceholder, Hint: HintIncomplete}
	}

	rec, err := e.prices.Lookup(sel.Town, sel.FlatType, sel.Year, sel.Quarter)
	if err != nil {
		observability.RecordPriceLookup(observability.ResultNotFound)
		return PriceResult{Text: PricePlaceholder, Hint: HintNotFound}
	}

	observability.RecordPriceLookup(observability.ResultOK)
	return PriceResult{Text: lookup.FormatPrice(rec.Price), Found: true, Record: rec}
}

// Selectors lists the values each dropdown offers.
type Selectors struct {
	Years      []int    `json:"years"`
	Quarters   []int    `json:"quarters"`
	Towns      []string `json:"towns"`
	FlatTypes  []string `json:"flat_types"`
	PriceYears []int    `json:"price_years"`
}

// Selectors returns distinct sorted dropdown values for both datasets.
func (e *Explorer) Selectors() Selectors {
	records := e.index.Records()
	years := make([]int, 0)
	for i, r := range records {
		// records are sorted, so equal years are adjacent.
		if i == 0 || r.Year != records[i-1].Year {
			years = append(years, r.Year)
		}
	}

	return Selectors{
		Years:      years,
		Quarters:   []int{1, 2, 3, 4},
		Towns:      e.prices.Towns(),
		FlatTypes:  e.prices.FlatTypes(),
		PriceYears: e.prices.Years(),
	}
}

// DefaultRange spans the first year's Q1 to the last year's Q4.
// Both are the zero Period when the index dataset is empty.
func (e *Explorer) DefaultRange() (domain.Period, domain.Period) {
	records := e.index.Records()
	if len(records) == 0 {
		return domain.Period{}, domain.Period{}
	}
	return domain.Period{Year: records[0].Year, Quarter: 1},
		domain.Period{Year: records[len(records)-1].Year, Quarter: 4}
}

// Coverage returns the first and last quarters of the index dataset.
func (e *Explorer) Coverage() (first, last domain.Period, ok bool) {
	records := e.index.Records()
	if len(records) == 0 {
		return domain.Period{}, domain.Period{}, false
	}
	return records[0].Period(), records[len(records)-1].Period(), true
}
