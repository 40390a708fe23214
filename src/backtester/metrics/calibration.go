package metrics

import (
	"math"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

// IntervalCoverage computes, per alpha level, the percentage of records whose
// realized market price falls within that record's fuzzy band at the level.
// Alphas with zero eligible records map to NaN.
func IntervalCoverage(records []*eventmodels.FuzzyPriceRecord, alphaLevels []float64) map[float64]float64 {
	coverage := make(map[float64]float64, len(alphaLevels))

	for _, alpha := range alphaLevels {
		eligible, within := 0, 0

		for _, record := range records {
			band, found := record.BandAt(alpha)
			if !found {
				continue
			}

			eligible += 1
			if record.MarketPrice >= band.Lower && record.MarketPrice <= band.Upper {
				within += 1
			}
		}

		if eligible == 0 {
			coverage[alpha] = math.NaN()
			continue
		}

		coverage[alpha] = 100 * float64(within) / float64(eligible)
	}

	return coverage
}

// CalibrationError is the mean absolute deviation between observed coverage
// and the theoretical target 100*(1-alpha), ignoring NaN entries. Returns NaN
// when no valid entries remain.
func CalibrationError(coverage map[float64]float64) float64 {
	total, count := 0.0, 0

	for alpha, observed := range coverage {
		if math.IsNaN(observed) {
			continue
		}

		target := 100 * (1 - alpha)
		total += math.Abs(observed - target)
		count += 1
	}

	if count == 0 {
		return math.NaN()
	}

	return total / float64(count)
}
