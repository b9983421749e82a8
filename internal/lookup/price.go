package lookup

import (
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"rpi-index-lab/internal/domain"
)

// PriceTable answers exact-match median price queries.
// When several records share a key the first one loaded wins.
type PriceTable struct {
	records []domain.PriceRecord
	first   map[domain.PriceKey]int
}

// NewPriceTable indexes records in load order.
func NewPriceTable(records []domain.PriceRecord) *PriceTable {
	t := &PriceTable{
		records: make([]domain.PriceRecord, len(records)),
		first:   make(map[domain.PriceKey]int, len(records)),
	}
	copy(t.records, records)
	for i := range t.records {
		k := t.records[i].Key()
		if _, ok := t.first[k]; !ok {
			t.first[k] = i
		}
	}
	return t
}

// Len returns the number of records, duplicates included.
func (t *PriceTable) Len() int {
	return len(t.records)
}

// Lookup returns the first record matching all four fields exactly.
// Returns ErrPriceNotFound when nothing matches.
func (t *PriceTable) Lookup(town, flatType string, year, quarter int) (*domain.PriceRecord, error) {
	i, ok := t.first[domain.PriceKey{Town: town, FlatType: flatType, Year: year, Quarter: quarter}]
	if !ok {
		return nil, ErrPriceNotFound
	}
	rec := t.records[i]
	return &rec, nil
}

// Towns returns the distinct towns, sorted.
func (t *PriceTable) Towns() []string {
	return t.distinct(func(r *domain.PriceRecord) string { return r.Town })
}

// FlatTypes returns the distinct flat types, sorted.
func (t *PriceTable) FlatTypes() []string {
	return t.distinct(func(r *domain.PriceRecord) string { return r.FlatType })
}

// Years returns the distinct years, ascending.
func (t *PriceTable) Years() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for i := range t.records {
		y := t.records[i].Year
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

func (t *PriceTable) distinct(field func(*domain.PriceRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range t.records {
		v := field(&t.records[i])
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Selection is a partially or fully filled price query.
type Selection struct {
	Town     string
	FlatType string
	Year     int // 0 = unset
	Quarter  int // 0 = unset
}

// Complete reports whether every field is set.
func (s Selection) Complete() bool {
	return strings.TrimSpace(s.Town) != "" &&
		strings.TrimSpace(s.FlatType) != "" &&
		s.Year != 0 &&
		s.Quarter != 0
}

// FormatPrice renders a price with thousands separators, rounded to at most three decimals.
func FormatPrice(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*1000)/1000, 3)
}
