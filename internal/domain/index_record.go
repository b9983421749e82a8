package domain

// IndexRecord is one quarter of the index dataset (RRPI_calculated).
// Identity key is (Year, Quarter).
type IndexRecord struct {
	Year       int     // calendar year
	Quarter    int     // 1..4
	RawCPI     float64 // raw consumer price index
	CPI        float64 // precomputed CPI as published with the dataset
	NominalRPI float64 // nominal resale price index
	RealRPI    float64 // real resale price index as published
	RealChange float64 // published real change
}

// Period returns the record's identity key.
func (r *IndexRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}

// Ordinal returns the record's chronological ordering key.
func (r *IndexRecord) Ordinal() int {
	return r.Year*10 + r.Quarter
}

// Label returns "YYYY QN".
func (r *IndexRecord) Label() string {
	return r.Period().Label()
}
