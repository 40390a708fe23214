package models

import (
	"time"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

type CloseReason string

const (
	CloseReasonSignal      CloseReason = "signal"
	CloseReasonExpiry      CloseReason = "expiry"
	CloseReasonLiquidation CloseReason = "liquidation"
)

type Trade struct {
	EntryDate         time.Time               `json:"entry_date"`
	ExitDate          time.Time               `json:"exit_date"`
	Strike            float64                 `json:"strike"`
	EntryPrice        float64                 `json:"entry_price"`
	ExitPrice         float64                 `json:"exit_price"`
	Quantity          int                     `json:"quantity"`
	Pnl               float64                 `json:"pnl"`
	PnlPct            float64                 `json:"pnl_pct"`
	HoldingPeriodDays int                     `json:"holding_period_days"`
	Class             eventmodels.SignalClass `json:"signal_class"`
	Reason            CloseReason             `json:"close_reason"`
}

func (t *Trade) IsWin() bool {
	return t.Pnl > 0
}
