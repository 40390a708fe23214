package eventpubsub

const (
	PositionOpenedEvent     = "PositionOpenedEvent"
	PositionClosedEvent     = "PositionClosedEvent"
	PositionExpiredEvent    = "PositionExpiredEvent"
	PositionLiquidatedEvent = "PositionLiquidatedEvent"
	BacktestCompletedEvent  = "BacktestCompletedEvent"
)
