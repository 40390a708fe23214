package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/signal-backtester/src/backtester/models"
)

const tradingDaysPerYear = 252.0

func TotalPnl(trades []*models.Trade) float64 {
	total := 0.0
	for _, trade := range trades {
		total += trade.Pnl
	}

	return total
}

// WinRate is the percentage of trades with positive pnl; 0 when no trades.
func WinRate(trades []*models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	wins := 0
	for _, trade := range trades {
		if trade.IsWin() {
			wins += 1
		}
	}

	return 100 * float64(wins) / float64(len(trades))
}

func AverageWin(trades []*models.Trade) float64 {
	var wins []float64
	for _, trade := range trades {
		if trade.Pnl > 0 {
			wins = append(wins, trade.Pnl)
		}
	}

	if len(wins) == 0 {
		return 0
	}

	mean, err := stats.Mean(wins)
	if err != nil {
		return 0
	}

	return mean
}

func AverageLoss(trades []*models.Trade) float64 {
	var losses []float64
	for _, trade := range trades {
		if trade.Pnl < 0 {
			losses = append(losses, trade.Pnl)
		}
	}

	if len(losses) == 0 {
		return 0
	}

	mean, err := stats.Mean(losses)
	if err != nil {
		return 0
	}

	return mean
}

// ProfitFactor is gross profit over gross loss. +Inf when there are wins but
// no losses, 0 when there are no trades.
func ProfitFactor(trades []*models.Trade) float64 {
	grossWin, grossLoss := 0.0, 0.0
	for _, trade := range trades {
		if trade.Pnl > 0 {
			grossWin += trade.Pnl
		} else if trade.Pnl < 0 {
			grossLoss += -trade.Pnl
		}
	}

	if grossLoss == 0 {
		if grossWin == 0 {
			return 0
		}

		return math.Inf(1)
	}

	return grossWin / grossLoss
}

func dailyReturns(equityCurve []float64) []float64 {
	if len(equityCurve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		returns = append(returns, (equityCurve[i]-equityCurve[i-1])/equityCurve[i-1])
	}

	return returns
}

// SharpeRatio annualizes the mean daily return by 252 and its standard
// deviation by sqrt(252). Returns 0 for fewer than 2 equity points or a
// zero-variance curve.
func SharpeRatio(equityCurve []float64, riskFreeRate float64) float64 {
	returns := dailyReturns(equityCurve)
	if returns == nil {
		return 0
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}

	sd, err := stats.StandardDeviation(returns)
	if err != nil {
		return 0
	}

	annualizedSd := sd * math.Sqrt(tradingDaysPerYear)
	if annualizedSd == 0 {
		return 0
	}

	return (mean*tradingDaysPerYear - riskFreeRate) / annualizedSd
}

// SortinoRatio uses only the negative-return subset in the denominator.
// Returns +Inf when no negative returns exist, 0 for fewer than 2 points.
func SortinoRatio(equityCurve []float64, riskFreeRate float64) float64 {
	returns := dailyReturns(equityCurve)
	if returns == nil {
		return 0
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	if len(downside) == 0 {
		return math.Inf(1)
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}

	downsideSd, err := stats.StandardDeviation(downside)
	if err != nil {
		return 0
	}

	annualizedSd := downsideSd * math.Sqrt(tradingDaysPerYear)
	if annualizedSd == 0 {
		return 0
	}

	return (mean*tradingDaysPerYear - riskFreeRate) / annualizedSd
}

// MaxDrawdown is the largest percentage decline from the running peak.
func MaxDrawdown(equityCurve []float64) float64 {
	maxDrawdown := 0.0
	for _, drawdown := range DrawdownSeries(equityCurve) {
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// DrawdownSeries returns the per-point running-peak drawdown in percent.
func DrawdownSeries(equityCurve []float64) []float64 {
	series := make([]float64, len(equityCurve))

	peak := math.Inf(-1)
	for i, value := range equityCurve {
		if value > peak {
			peak = value
		}

		if peak != 0 {
			series[i] = 100 * (peak - value) / peak
		}
	}

	return series
}
