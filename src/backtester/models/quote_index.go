package models

import (
	"sort"
	"time"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

// QuoteIndex is built once before the date loop: a time-ordered quote series
// per contract key, plus the sorted unique set of quote dates.
type QuoteIndex struct {
	byKey            map[eventmodels.ContractKey][]*eventmodels.OptionQuote
	dates            []time.Time
	underlyingByDate map[time.Time]float64
}

func NewQuoteIndex(quotes []*eventmodels.OptionQuote) *QuoteIndex {
	byKey := make(map[eventmodels.ContractKey][]*eventmodels.OptionQuote)
	dateSet := make(map[time.Time]struct{})
	underlyingByDate := make(map[time.Time]float64)

	for _, quote := range quotes {
		key := quote.Key()
		byKey[key] = append(byKey[key], quote)
		dateSet[quote.QuoteDate] = struct{}{}
		underlyingByDate[quote.QuoteDate] = quote.UnderlyingLast
	}

	for _, series := range byKey {
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].QuoteDate.Before(series[j].QuoteDate)
		})
	}

	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	return &QuoteIndex{
		byKey:            byKey,
		dates:            dates,
		underlyingByDate: underlyingByDate,
	}
}

// UnderlyingAt returns the underlying price observed on the most recent quote
// date at or before date. The underlying is shared across contract keys.
func (idx *QuoteIndex) UnderlyingAt(date time.Time) (float64, bool) {
	i := sort.Search(len(idx.dates), func(i int) bool {
		return idx.dates[i].After(date)
	})

	if i == 0 {
		return 0, false
	}

	return idx.underlyingByDate[idx.dates[i-1]], true
}

// Dates returns the sorted unique quote dates: the simulation calendar.
func (idx *QuoteIndex) Dates() []time.Time {
	return idx.dates
}

// LatestAt returns the most recent quote at or before date for the given key.
func (idx *QuoteIndex) LatestAt(key eventmodels.ContractKey, date time.Time) (*eventmodels.OptionQuote, bool) {
	series, found := idx.byKey[key]
	if !found {
		return nil, false
	}

	// first quote strictly after date
	i := sort.Search(len(series), func(i int) bool {
		return series[i].QuoteDate.After(date)
	})

	if i == 0 {
		return nil, false
	}

	return series[i-1], true
}
