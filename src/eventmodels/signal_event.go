package eventmodels

import "time"

type SignalEvent struct {
	QuoteDate  time.Time
	Strike     float64
	ExpireDate time.Time
	Class      SignalClass
	Price      float64
	Confidence *float64
}

func (s *SignalEvent) Key() ContractKey {
	return NewContractKey(s.Strike, s.ExpireDate)
}
