package ingestion

import (
	"math"
	"testing"
)

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"Q3", 3, false},
		{"q1", 1, false},
		{"  Q4 ", 4, false},
		{"03", 3, false},
		{"3.0", 3, false},
		{"Q02", 2, false},
		{"Q 1", 1, false},
		{"2.5", 0, true},
		{"NaN", 0, true},
		{"0", 0, true},
		{"5", 0, true},
		{"Q", 0, true},
		{"", 0, true},
		{"Q12", 0, true},
		{"three", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuarter(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseQuarter(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuarter(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuarter(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIndexRows(t *testing.T) {
	rows := []Row{
		{"Year": "2009", "Quarter": "1", "Raw_CPI": "95.2", "CPI": "1", "Nominal_RPI": "100", "Real_RPI": "99", "Real_Change": "0"},
		{"Year": "2009", "Quarter": "Q2", "Raw_CPI": "97", "CPI": "1", "Nominal_RPI": "104", "Real_RPI": "101", "Real_Change": "n/a"},
		{"Year": "", "Quarter": "3"},                     // non-finite year
		{"Year": "2009", "Quarter": "7"},                 // bad quarter
		{"Year": "2009", "Quarter": "1", "Raw_CPI": "1"}, // duplicate quarter
		{"Year": "2009.0", "Quarter": "3.0", "Raw_CPI": "98.5", "Nominal_RPI": "107"},
	}

	recs, stats := NormalizeIndexRows(rows)

	if stats.Total != 6 || stats.Kept != 3 || stats.Dropped != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[2].Year != 2009 || recs[2].Quarter != 3 {
		t.Errorf("expected float-typed quarter to parse as 2009 Q3, got %d Q%d", recs[2].Year, recs[2].Quarter)
	}
	if recs[0].RawCPI != 95.2 {
		t.Errorf("expected first occurrence to win, got RawCPI %f", recs[0].RawCPI)
	}
	if recs[1].Quarter != 2 {
		t.Errorf("expected quarter 2, got %d", recs[1].Quarter)
	}
	if !math.IsNaN(recs[1].RealChange) {
		t.Errorf("expected NaN for unparseable cell, got %f", recs[1].RealChange)
	}
}

func TestNormalizePriceRows(t *testing.T) {
	rows := []Row{
		{"year": "2015", "quarter": "Q2", "town": " BEDOK ", "flat_type": "4 ROOM", "price": "420000"},
		{"year": "2015", "quarter": "2", "town": "BEDOK", "flat_type": "4 ROOM", "price": "999999"},
		{"year": "2015", "quarter": "2", "town": "", "flat_type": "4 ROOM", "price": "1"},
		{"year": "2015", "quarter": "2", "town": "BEDOK", "flat_type": "  ", "price": "1"},
		{"year": "2015", "quarter": "Q9", "town": "BEDOK", "flat_type": "4 ROOM", "price": "1"},
		{"year": "abc", "quarter": "1", "town": "BEDOK", "flat_type": "4 ROOM", "price": "1"},
		{"year": "2016", "quarter": "02", "town": "YISHUN", "flat_type": "3 ROOM", "price": "1,234"},
		{"year": "2016", "quarter": "3.0", "town": "YISHUN", "flat_type": "3 ROOM", "price": "300000"},
	}

	recs, stats := NormalizePriceRows(rows)

	if stats.Total != 8 || stats.Kept != 4 || stats.Dropped != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if recs[2].Quarter != 2 || recs[3].Quarter != 3 {
		t.Errorf("expected zero-padded and float quarters kept, got Q%d and Q%d", recs[2].Quarter, recs[3].Quarter)
	}
	if !math.IsNaN(recs[2].Price) {
		t.Errorf("expected NaN for grouped number, got %f", recs[2].Price)
	}
	if recs[0].Town != "BEDOK" {
		t.Errorf("expected trimmed town, got %q", recs[0].Town)
	}
	if recs[0].Quarter != 2 || recs[1].Price != 999999 {
		t.Errorf("unexpected records: %+v", recs)
	}
}
