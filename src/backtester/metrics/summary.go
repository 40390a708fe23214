package metrics

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/jiaming2012/signal-backtester/src/backtester/models"
)

// Ratio marshals non-finite values as null; Sortino and profit factor are
// +Inf on curves with no losing side, and JSON has no encoding for that.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	v := float64(r)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}

	return json.Marshal(v)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*r = Ratio(v)

	return nil
}

type Summary struct {
	TradeCount   int     `json:"trade_count"`
	TotalPnl     float64 `json:"total_pnl"`
	WinRate      float64 `json:"win_rate"`
	AverageWin   float64 `json:"average_win"`
	AverageLoss  float64 `json:"average_loss"`
	ProfitFactor Ratio   `json:"profit_factor"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio Ratio   `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	FinalCash    float64 `json:"final_cash"`
	FinalEquity  float64 `json:"final_equity"`
}

func NewSummary(result *models.BacktestResult, riskFreeRate float64) *Summary {
	finalEquity := 0.0
	if len(result.EquityCurve) > 0 {
		finalEquity = result.EquityCurve[len(result.EquityCurve)-1]
	}

	return &Summary{
		TradeCount:   len(result.Trades),
		TotalPnl:     TotalPnl(result.Trades),
		WinRate:      WinRate(result.Trades),
		AverageWin:   AverageWin(result.Trades),
		AverageLoss:  AverageLoss(result.Trades),
		ProfitFactor: Ratio(ProfitFactor(result.Trades)),
		SharpeRatio:  SharpeRatio(result.EquityCurve, riskFreeRate),
		SortinoRatio: Ratio(SortinoRatio(result.EquityCurve, riskFreeRate)),
		MaxDrawdown:  MaxDrawdown(result.EquityCurve),
		FinalCash:    result.FinalCash,
		FinalEquity:  finalEquity,
	}
}
