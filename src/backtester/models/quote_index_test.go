package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

func TestQuoteIndex(t *testing.T) {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.AddDate(0, 0, 30)
	key := eventmodels.NewContractKey(400.0, expiry)

	t.Run("dates are unique and sorted across keys", func(t *testing.T) {
		quotes := append(
			makeQuoteSeries(400.0, expiry, start, 5, 10.0, 405.0),
			makeQuoteSeries(410.0, expiry, start, 5, 8.0, 405.0)...,
		)

		index := NewQuoteIndex(quotes)

		dates := index.Dates()
		require.Len(t, dates, 6)
		for i := 1; i < len(dates); i++ {
			assert.True(t, dates[i-1].Before(dates[i]))
		}
	})

	t.Run("latest at returns the most recent quote at or before date", func(t *testing.T) {
		quotes := []*eventmodels.OptionQuote{
			{QuoteDate: start, Strike: 400.0, ExpireDate: expiry, Mid: 10.0},
			{QuoteDate: start.AddDate(0, 0, 5), Strike: 400.0, ExpireDate: expiry, Mid: 12.0},
		}

		index := NewQuoteIndex(quotes)

		quote, found := index.LatestAt(key, start.AddDate(0, 0, 3))
		require.True(t, found)
		assert.Equal(t, 10.0, quote.Mid)

		quote, found = index.LatestAt(key, start.AddDate(0, 0, 5))
		require.True(t, found)
		assert.Equal(t, 12.0, quote.Mid)

		quote, found = index.LatestAt(key, start.AddDate(0, 0, 10))
		require.True(t, found)
		assert.Equal(t, 12.0, quote.Mid)
	})

	t.Run("no quote before the first date", func(t *testing.T) {
		quotes := []*eventmodels.OptionQuote{
			{QuoteDate: start, Strike: 400.0, ExpireDate: expiry, Mid: 10.0},
		}

		index := NewQuoteIndex(quotes)

		_, found := index.LatestAt(key, start.AddDate(0, 0, -1))
		assert.False(t, found)
	})

	t.Run("unknown key is not found", func(t *testing.T) {
		index := NewQuoteIndex(makeQuoteSeries(400.0, expiry, start, 5, 10.0, 405.0))

		_, found := index.LatestAt(eventmodels.NewContractKey(999.0, expiry), start)
		assert.False(t, found)
	})

	t.Run("underlying is shared across contract keys", func(t *testing.T) {
		index := NewQuoteIndex(makeQuoteSeries(400.0, expiry, start, 5, 10.0, 405.0))

		underlying, found := index.UnderlyingAt(start.AddDate(0, 0, 2))
		require.True(t, found)
		assert.Equal(t, 405.0, underlying)

		_, found = index.UnderlyingAt(start.AddDate(0, 0, -1))
		assert.False(t, found)
	})
}
