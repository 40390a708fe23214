package eventmodels

import "time"

// FuzzyBand is the interval retained at confidence level Alpha, produced by
// the upstream fuzzy pricing layer.
type FuzzyBand struct {
	Alpha float64 `json:"alpha"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// FuzzyPriceRecord pairs a realized market price with the fuzzy price bands
// that were forecast for it. Consumed read-only by the calibration metrics.
type FuzzyPriceRecord struct {
	QuoteDate   time.Time   `json:"quote_date"`
	Strike      float64     `json:"strike"`
	ExpireDate  time.Time   `json:"expire_date"`
	MarketPrice float64     `json:"market_price"`
	Bands       []FuzzyBand `json:"bands"`
}

// BandAt returns the band for the given alpha level, if the record carries one.
func (r *FuzzyPriceRecord) BandAt(alpha float64) (FuzzyBand, bool) {
	for _, band := range r.Bands {
		if band.Alpha == alpha {
			return band, true
		}
	}

	return FuzzyBand{}, false
}
