package domain

// PriceRecord is one median resale price observation (median_prices).
// Key is (Town, FlatType, Year, Quarter); duplicates are tolerated.
type PriceRecord struct {
	Year     int     // calendar year
	Quarter  int     // 1..4
	Town     string  // non-empty
	FlatType string  // non-empty, e.g. "4 ROOM"
	Price    float64 // median price
}

// PriceKey is the lookup key of a PriceRecord.
type PriceKey struct {
	Town     string
	FlatType string
	Year     int
	Quarter  int
}

// Key returns the record's lookup key.
func (r *PriceRecord) Key() PriceKey {
	return PriceKey{Town: r.Town, FlatType: r.FlatType, Year: r.Year, Quarter: r.Quarter}
}

// Period returns the quarter of the observation.
func (r *PriceRecord) Period() Period {
	return Period{Year: r.Year, Quarter: r.Quarter}
}
