package lookup

import (
	"errors"
	"testing"

	"rpi-index-lab/internal/domain"
)

func TestNearestIndexAt_Empty(t *testing.T) {
	_, err := NearestIndexAt(domain.Period{Year: 2009, Quarter: 1}, nil)
	if !errors.Is(err, ErrNoIndexData) {
		t.Errorf("expected ErrNoIndexData, got %v", err)
	}
}

func TestNearestIndexAt(t *testing.T) {
	recs := []domain.IndexRecord{
		{Year: 2009, Quarter: 1},
		{Year: 2009, Quarter: 3},
		{Year: 2010, Quarter: 1},
	}

	tests := []struct {
		name   string
		target domain.Period
		want   string
	}{
		{"exact", domain.Period{Year: 2009, Quarter: 3}, "2009 Q3"},
		{"gap", domain.Period{Year: 2009, Quarter: 4}, "2009 Q3"},
		{"after last", domain.Period{Year: 2015, Quarter: 2}, "2010 Q1"},
		{"before first", domain.Period{Year: 2000, Quarter: 1}, "2009 Q1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NearestIndexAt(tt.target, recs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Label() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Label())
			}
		})
	}
}

func testPrices() []domain.PriceRecord {
	return []domain.PriceRecord{
		{Year: 2015, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
		{Year: 2015, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 999999},
		{Year: 2014, Quarter: 1, Town: "ANG MO KIO", FlatType: "3 ROOM", Price: 300500.5},
		{Year: 2016, Quarter: 4, Town: "BEDOK", FlatType: "5 ROOM", Price: 510000},
	}
}

func TestPriceTable_LookupFirstWins(t *testing.T) {
	tbl := NewPriceTable(testPrices())

	rec, err := tbl.Lookup("BEDOK", "4 ROOM", 2015, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Price != 420000 {
		t.Errorf("expected first record 420000, got %f", rec.Price)
	}
	if tbl.Len() != 4 {
		t.Errorf("expected 4 records, got %d", tbl.Len())
	}
}

func TestPriceTable_LookupNotFound(t *testing.T) {
	tbl := NewPriceTable(testPrices())

	tests := []struct {
		name     string
		town     string
		flatType string
		year     int
		quarter  int
	}{
		{"wrong quarter", "BEDOK", "4 ROOM", 2015, 3},
		{"case sensitive", "bedok", "4 ROOM", 2015, 2},
		{"unknown town", "WOODLANDS", "4 ROOM", 2015, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Lookup(tt.town, tt.flatType, tt.year, tt.quarter)
			if !errors.Is(err, ErrPriceNotFound) {
				t.Errorf("expected ErrPriceNotFound, got %v", err)
			}
		})
	}
}

func TestPriceTable_Distinct(t *testing.T) {
	tbl := NewPriceTable(testPrices())

	towns := tbl.Towns()
	if len(towns) != 2 || towns[0] != "ANG MO KIO" || towns[1] != "BEDOK" {
		t.Errorf("unexpected towns: %v", towns)
	}
	types := tbl.FlatTypes()
	if len(types) != 3 || types[0] != "3 ROOM" {
		t.Errorf("unexpected flat types: %v", types)
	}
	years := tbl.Years()
	if len(years) != 3 || years[0] != 2014 || years[2] != 2016 {
		t.Errorf("unexpected years: %v", years)
	}
}

func TestSelection_Complete(t *testing.T) {
	full := Selection{Town: "BEDOK", FlatType: "4 ROOM", Year: 2015, Quarter: 2}
	if !full.Complete() {
		t.Error("expected complete selection")
	}

	partial := []Selection{
		{FlatType: "4 ROOM", Year: 2015, Quarter: 2},
		{Town: "BEDOK", Year: 2015, Quarter: 2},
		{Town: "BEDOK", FlatType: "4 ROOM", Quarter: 2},
		{Town: "BEDOK", FlatType: "4 ROOM", Year: 2015},
		{Town: "  ", FlatType: "4 ROOM", Year: 2015, Quarter: 2},
	}
	for i, s := range partial {
		if s.Complete() {
			t.Errorf("case %d: expected incomplete selection", i)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{420000, "420,000"},
		{300500.5, "300,500.5"},
		{1234.5678, "1,234.568"},
		{999, "999"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
