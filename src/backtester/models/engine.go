package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
	"github.com/jiaming2012/signal-backtester/src/eventpubsub"
)

type BacktestResult struct {
	ID            uuid.UUID                             `json:"id"`
	Trades        []*Trade                              `json:"trades"`
	EquityCurve   []float64                             `json:"equity_curve"`
	EquityPoints  []*EquityPoint                        `json:"equity_points"`
	Dates         []time.Time                           `json:"dates"`
	FinalCash     float64                               `json:"final_cash"`
	OpenPositions map[eventmodels.ContractKey]*Position `json:"-"`
	Config        BacktestConfig                        `json:"config"`
}

// RunBacktest drives the date-ordered event sequence over the quote calendar:
// expiry settlement, signal application, mark-to-market, equity recording.
// The fold is strictly sequential: cash and position-cap constraints make
// later decisions depend on exactly which earlier signals were accepted.
func RunBacktest(quotes []*eventmodels.OptionQuote, signals []*eventmodels.SignalEvent, cfg BacktestConfig) (*BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}

	index := NewQuoteIndex(quotes)
	signalsByDate := bucketSignalsByDate(signals)
	ledger := NewLedger(cfg, index)

	dates := index.Dates()
	equityCurve := make([]float64, 0, len(dates))
	equityPoints := make([]*EquityPoint, 0, len(dates))

	for _, date := range dates {
		if cfg.CloseOnExpiry {
			ledger.SettleExpired(date)
		}

		for _, signal := range signalsByDate[date] {
			applySignal(ledger, date, signal)
		}

		equity := ledger.MarkToMarket(date)
		equityCurve = append(equityCurve, equity)
		equityPoints = append(equityPoints, &EquityPoint{
			Timestamp: date,
			Equity:    equity,
		})
	}

	// every position must end its life as exactly one trade
	lastDate := dates[len(dates)-1]
	if liquidated := ledger.ForceLiquidate(lastDate); len(liquidated) > 0 {
		log.Infof("force-liquidated %d positions at end of run", len(liquidated))
	}

	result := &BacktestResult{
		ID:            uuid.New(),
		Trades:        ledger.Trades(),
		EquityCurve:   equityCurve,
		EquityPoints:  equityPoints,
		Dates:         dates,
		FinalCash:     ledger.Cash(),
		OpenPositions: ledger.OpenPositions(),
		Config:        cfg,
	}

	eventpubsub.Publish(eventpubsub.BacktestCompletedEvent, result)

	return result, nil
}

// applySignal mutates the ledger for a single signal row. Rows with missing
// or non-finite prices are skipped; a rejected open never partially mutates
// cash or the position map.
func applySignal(ledger *Ledger, date time.Time, signal *eventmodels.SignalEvent) {
	if math.IsNaN(signal.Price) || math.IsInf(signal.Price, 0) {
		log.Warnf("applySignal: skipping %s signal for %s: non-finite price", signal.Class, signal.Key().String())
		return
	}

	switch {
	case signal.Class.IsEntry():
		ledger.Open(date, signal.Key(), signal.Price, signal.Class)
	case signal.Class.IsExit():
		ledger.Close(signal.Key(), date, signal.Price, CloseReasonSignal)
	default:
		// hold and anything else: no effect
	}
}

// bucketSignalsByDate groups the stream per quote date, preserving source
// order within a date: no secondary sort key is defined for same-date rows.
func bucketSignalsByDate(signals []*eventmodels.SignalEvent) map[time.Time][]*eventmodels.SignalEvent {
	byDate := make(map[time.Time][]*eventmodels.SignalEvent)
	for _, signal := range signals {
		byDate[signal.QuoteDate] = append(byDate[signal.QuoteDate], signal)
	}

	return byDate
}
