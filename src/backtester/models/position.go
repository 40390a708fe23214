package models

import (
	"time"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

type Position struct {
	EntryDate  time.Time              `json:"entry_date"`
	Strike     float64                `json:"strike"`
	ExpireDate time.Time              `json:"expire_date"`
	EntryPrice float64                `json:"entry_price"`
	Quantity   int                    `json:"quantity"`
	Key        eventmodels.ContractKey `json:"-"`
	Class      eventmodels.SignalClass `json:"signal_class"`

	// EntryUnderlying is the underlying price observed at entry. It feeds the
	// intrinsic-value fallback when a contract expires without any quote.
	EntryUnderlying float64 `json:"entry_underlying"`
}

func NewPosition(entryDate time.Time, key eventmodels.ContractKey, entryPrice float64, quantity int, class eventmodels.SignalClass, entryUnderlying float64) *Position {
	return &Position{
		EntryDate:       entryDate,
		Strike:          key.Strike,
		ExpireDate:      key.ExpireDate,
		EntryPrice:      entryPrice,
		Quantity:        quantity,
		Key:             key,
		Class:           class,
		EntryUnderlying: entryUnderlying,
	}
}

// IntrinsicValue is the exercise payoff, max(underlying - strike, 0). The
// source tables carry no call/put flag, so this assumes a call payoff: a known
// limitation shared with the expiry fallback chain.
func (p *Position) IntrinsicValue() float64 {
	if value := p.EntryUnderlying - p.Strike; value > 0 {
		return value
	}

	return 0
}
