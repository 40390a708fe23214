package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/signal-backtester/src/backtester/models"
)

func TestTradeStatistics(t *testing.T) {
	trades := []*models.Trade{
		{Pnl: 100.0},
		{Pnl: -50.0},
		{Pnl: 30.0},
		{Pnl: -10.0},
	}

	t.Run("total pnl", func(t *testing.T) {
		assert.InDelta(t, 70.0, TotalPnl(trades), 1e-9)
		assert.Equal(t, 0.0, TotalPnl(nil))
	})

	t.Run("win rate", func(t *testing.T) {
		assert.InDelta(t, 50.0, WinRate(trades), 1e-9)
		assert.Equal(t, 0.0, WinRate(nil))
	})

	t.Run("average win and loss", func(t *testing.T) {
		assert.InDelta(t, 65.0, AverageWin(trades), 1e-9)
		assert.InDelta(t, -30.0, AverageLoss(trades), 1e-9)

		assert.Equal(t, 0.0, AverageWin([]*models.Trade{{Pnl: -1.0}}))
		assert.Equal(t, 0.0, AverageLoss([]*models.Trade{{Pnl: 1.0}}))
	})

	t.Run("profit factor", func(t *testing.T) {
		assert.InDelta(t, 130.0/60.0, ProfitFactor(trades), 1e-9)
		assert.True(t, math.IsInf(ProfitFactor([]*models.Trade{{Pnl: 10.0}}), 1))
		assert.Equal(t, 0.0, ProfitFactor(nil))
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("returns 0 for a single point", func(t *testing.T) {
		assert.Equal(t, 0.0, SharpeRatio([]float64{100.0}, 0))
	})

	t.Run("returns 0 for zero variance", func(t *testing.T) {
		assert.Equal(t, 0.0, SharpeRatio([]float64{100.0, 100.0, 100.0}, 0))
	})

	t.Run("positive for a rising curve with noise", func(t *testing.T) {
		sharpe := SharpeRatio([]float64{100, 102, 101, 104, 103, 107}, 0)
		assert.Greater(t, sharpe, 0.0)
	})
}

func TestSortinoRatio(t *testing.T) {
	t.Run("returns 0 for fewer than two points", func(t *testing.T) {
		assert.Equal(t, 0.0, SortinoRatio([]float64{100.0}, 0))
	})

	t.Run("returns +Inf when no negative returns exist", func(t *testing.T) {
		assert.True(t, math.IsInf(SortinoRatio([]float64{100, 110, 121}, 0), 1))
	})

	t.Run("finite when both up and down days exist", func(t *testing.T) {
		sortino := SortinoRatio([]float64{100, 104, 102, 108, 105, 112}, 0)
		assert.False(t, math.IsInf(sortino, 0))
		assert.False(t, math.IsNaN(sortino))
	})
}

func TestDrawdown(t *testing.T) {
	t.Run("zero for a monotonically increasing curve", func(t *testing.T) {
		assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120, 130}))
	})

	t.Run("fifty percent for a halving", func(t *testing.T) {
		assert.InDelta(t, 50.0, MaxDrawdown([]float64{100, 50, 100}), 1e-9)
	})

	t.Run("series tracks the running peak point by point", func(t *testing.T) {
		series := DrawdownSeries([]float64{100, 80, 120, 90})
		assert.Len(t, series, 4)
		assert.InDelta(t, 0.0, series[0], 1e-9)
		assert.InDelta(t, 20.0, series[1], 1e-9)
		assert.InDelta(t, 0.0, series[2], 1e-9)
		assert.InDelta(t, 25.0, series[3], 1e-9)
	})

	t.Run("empty curve yields an empty series", func(t *testing.T) {
		assert.Empty(t, DrawdownSeries(nil))
		assert.Equal(t, 0.0, MaxDrawdown(nil))
	})
}

func TestSummary(t *testing.T) {
	result := &models.BacktestResult{
		Trades: []*models.Trade{
			{Pnl: 95.0},
			{Pnl: -20.0},
		},
		EquityCurve: []float64{10000, 10050, 10020, 10095},
		FinalCash:   10095,
	}

	summary := NewSummary(result, 0)

	assert.Equal(t, 2, summary.TradeCount)
	assert.InDelta(t, 75.0, summary.TotalPnl, 1e-9)
	assert.InDelta(t, 50.0, summary.WinRate, 1e-9)
	assert.InDelta(t, 10095.0, summary.FinalEquity, 1e-9)
	assert.Greater(t, summary.MaxDrawdown, 0.0)
}

func TestSummaryEncoding(t *testing.T) {
	t.Run("non-finite ratios encode as null", func(t *testing.T) {
		result := &models.BacktestResult{
			Trades:      []*models.Trade{{Pnl: 95.0}},
			EquityCurve: []float64{10000, 10095, 10095},
			FinalCash:   10095,
		}

		summary := NewSummary(result, 0)
		require.True(t, math.IsInf(float64(summary.ProfitFactor), 1))
		require.True(t, math.IsInf(float64(summary.SortinoRatio), 1))

		data, err := json.Marshal(summary)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"profit_factor":null`)
		assert.Contains(t, string(data), `"sortino_ratio":null`)
	})

	t.Run("null ratio round-trips to zero", func(t *testing.T) {
		var decoded Summary
		require.NoError(t, json.Unmarshal([]byte(`{"profit_factor":null,"sortino_ratio":1.5}`), &decoded))

		assert.Equal(t, Ratio(0), decoded.ProfitFactor)
		assert.Equal(t, Ratio(1.5), decoded.SortinoRatio)
	})
}
