package models

import (
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
	"github.com/jiaming2012/signal-backtester/src/eventpubsub"
)

// Ledger owns all mutation of cash and inventory. Nothing outside its narrow
// API touches the open-position map or the trade list.
type Ledger struct {
	cfg           BacktestConfig
	index         *QuoteIndex
	cash          float64
	openPositions map[eventmodels.ContractKey]*Position
	trades        []*Trade
	openedCount   int
}

func NewLedger(cfg BacktestConfig, index *QuoteIndex) *Ledger {
	return &Ledger{
		cfg:           cfg,
		index:         index,
		cash:          cfg.InitialCapital,
		openPositions: make(map[eventmodels.ContractKey]*Position),
		trades:        make([]*Trade, 0),
	}
}

func (l *Ledger) Cash() float64 {
	return l.cash
}

func (l *Ledger) Trades() []*Trade {
	return l.trades
}

func (l *Ledger) OpenPositions() map[eventmodels.ContractKey]*Position {
	return l.openPositions
}

func (l *Ledger) OpenedCount() int {
	return l.openedCount
}

// Open attempts to fill an entry signal. It fails silently when the key is
// already open, the position cap is reached, or no affordable quantity
// remains after the two-stage sizing. The ledger never goes negative on cash.
func (l *Ledger) Open(date time.Time, key eventmodels.ContractKey, price float64, class eventmodels.SignalClass) bool {
	if _, found := l.openPositions[key]; found {
		return false
	}

	if len(l.openPositions) >= l.cfg.MaxPositions {
		return false
	}

	unitCost := price + l.cfg.TransactionCost
	if unitCost <= 0 {
		return false
	}

	quantity := int(math.Floor(l.cfg.PositionSize / unitCost))
	if quantity == 0 {
		if !l.cfg.AllowPartialFill {
			return false
		}

		quantity = 1
	}

	cost := float64(quantity) * unitCost
	if cost > l.cash {
		// down-size to what the remaining cash can carry
		quantity = int(math.Floor(l.cash / unitCost))
		if quantity == 0 {
			return false
		}

		cost = float64(quantity) * unitCost
	}

	entryUnderlying := 0.0
	if underlying, found := l.index.UnderlyingAt(date); found {
		entryUnderlying = underlying
	}

	position := NewPosition(date, key, price, quantity, class, entryUnderlying)

	l.cash -= cost
	l.openPositions[key] = position
	l.openedCount += 1

	log.WithFields(log.Fields{
		"key":      key.String(),
		"quantity": quantity,
		"price":    price,
	}).Debugf("opened position on %s", date.Format("2006-01-02"))

	eventpubsub.Publish(eventpubsub.PositionOpenedEvent, position)

	return true
}

// Close closes the open position for key at exitPrice and appends the
// resulting trade. Returns nil if no position is open for the key.
func (l *Ledger) Close(key eventmodels.ContractKey, date time.Time, exitPrice float64, reason CloseReason) *Trade {
	position, found := l.openPositions[key]
	if !found {
		return nil
	}

	quantity := float64(position.Quantity)
	pnl := quantity*(exitPrice-l.cfg.TransactionCost) - quantity*(position.EntryPrice+l.cfg.TransactionCost)

	pnlPct := 0.0
	if position.EntryPrice != 0 {
		pnlPct = 100 * pnl / (quantity * position.EntryPrice)
	}

	trade := &Trade{
		EntryDate:         position.EntryDate,
		ExitDate:          date,
		Strike:            position.Strike,
		EntryPrice:        position.EntryPrice,
		ExitPrice:         exitPrice,
		Quantity:          position.Quantity,
		Pnl:               pnl,
		PnlPct:            pnlPct,
		HoldingPeriodDays: int(date.Sub(position.EntryDate).Hours() / 24),
		Class:             position.Class,
		Reason:            reason,
	}

	l.cash += quantity * (exitPrice - l.cfg.TransactionCost)
	l.trades = append(l.trades, trade)
	delete(l.openPositions, key)

	topic := eventpubsub.PositionClosedEvent
	switch reason {
	case CloseReasonExpiry:
		topic = eventpubsub.PositionExpiredEvent
	case CloseReasonLiquidation:
		topic = eventpubsub.PositionLiquidatedEvent
	}

	eventpubsub.Publish(topic, trade)

	return trade
}

// SettleExpired force-closes every position whose expiry has passed. The exit
// price resolution order is: most recent quote at or before expiry, then
// intrinsic value from the entry-date underlying, then zero.
func (l *Ledger) SettleExpired(date time.Time) []*Trade {
	var trades []*Trade

	for _, key := range l.sortedOpenKeys() {
		position := l.openPositions[key]
		if position.ExpireDate.After(date) {
			continue
		}

		exitPrice := 0.0
		if quote, found := l.index.LatestAt(key, position.ExpireDate); found {
			exitPrice = quote.Mid
		} else {
			exitPrice = position.IntrinsicValue()
			log.Warnf("SettleExpired: no quote at or before expiry for %s, using intrinsic value %.2f", key.String(), exitPrice)
		}

		if trade := l.Close(key, date, exitPrice, CloseReasonExpiry); trade != nil {
			trades = append(trades, trade)
		}
	}

	return trades
}

// MarkToMarket values every open position at the most recent quote at or
// before date, falling back to the entry price when no quote exists.
func (l *Ledger) MarkToMarket(date time.Time) float64 {
	equity := l.cash

	for _, key := range l.sortedOpenKeys() {
		position := l.openPositions[key]

		markPrice := position.EntryPrice
		if quote, found := l.index.LatestAt(key, date); found {
			markPrice = quote.Mid
		}

		equity += float64(position.Quantity) * markPrice
	}

	return equity
}

// ForceLiquidate closes every remaining position at the last simulated date,
// priced at the most recent quote at or before that date, else entry price.
func (l *Ledger) ForceLiquidate(date time.Time) []*Trade {
	var trades []*Trade

	for _, key := range l.sortedOpenKeys() {
		position := l.openPositions[key]

		exitPrice := position.EntryPrice
		if quote, found := l.index.LatestAt(key, date); found {
			exitPrice = quote.Mid
		}

		if trade := l.Close(key, date, exitPrice, CloseReasonLiquidation); trade != nil {
			trades = append(trades, trade)
		}
	}

	return trades
}

// sortedOpenKeys fixes the iteration order over the position map so that
// settlement, liquidation and equity sums are reproducible across runs.
func (l *Ledger) sortedOpenKeys() []eventmodels.ContractKey {
	keys := make([]eventmodels.ContractKey, 0, len(l.openPositions))
	for key := range l.openPositions {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].ExpireDate.Equal(keys[j].ExpireDate) {
			return keys[i].ExpireDate.Before(keys[j].ExpireDate)
		}

		return keys[i].Strike < keys[j].Strike
	})

	return keys
}
