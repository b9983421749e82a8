package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Period identifies a calendar quarter.
type Period struct {
	Year    int // calendar year
	Quarter int // 1..4
}

// DefaultBasePeriod is the reference quarter shown before a base is chosen.
var DefaultBasePeriod = Period{Year: 2009, Quarter: 1}

// Valid reports whether the quarter is within 1..4.
func (p Period) Valid() bool {
	return p.Quarter >= 1 && p.Quarter <= 4
}

// Ordinal encodes the period as year*10+quarter.
// Quarter is always < 10, so ordinals sort chronologically.
func (p Period) Ordinal() int {
	return p.Year*10 + p.Quarter
}

// Label formats the period as "2009 Q1".
func (p Period) Label() string {
	return fmt.Sprintf("%d Q%d", p.Year, p.Quarter)
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return p.Label()
}

// PeriodFromOrdinal is the inverse of Period.Ordinal.
func PeriodFromOrdinal(ordinal int) Period {
	return Period{Year: ordinal / 10, Quarter: ordinal % 10}
}

// PeriodRange is a pair of user-supplied endpoints.
// Start and End are order-independent; see Bounds.
type PeriodRange struct {
	Start Period
	End   Period
}

// Bounds returns the low and high ordinals of the range.
func (r PeriodRange) Bounds() (lo, hi int) {
	lo, hi = r.Start.Ordinal(), r.End.Ordinal()
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Contains reports whether p falls within the closed range.
func (r PeriodRange) Contains(p Period) bool {
	lo, hi := r.Bounds()
	o := p.Ordinal()
	return o >= lo && o <= hi
}

// ParsePeriod accepts "2009Q1", "2009 Q1", "2009-Q1" and "2009-1".
func ParsePeriod(s string) (Period, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	var yearPart, quarterPart string
	if i := strings.IndexAny(v, " -Q"); i > 0 {
		yearPart = v[:i]
		quarterPart = strings.TrimLeft(v[i:], " -Q")
	} else {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: bad year", s)
	}
	quarter, err := strconv.Atoi(quarterPart)
	if err != nil || quarter < 1 || quarter > 4 {
		return Period{}, fmt.Errorf("invalid period %q: bad quarter", s)
	}
	return Period{Year: year, Quarter: quarter}, nil
}
