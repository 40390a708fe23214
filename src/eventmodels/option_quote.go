package eventmodels

import "time"

type OptionQuote struct {
	QuoteDate      time.Time
	Strike         float64
	ExpireDate     time.Time
	Mid            float64
	UnderlyingLast float64
	DTE            float64
}

func (q *OptionQuote) Key() ContractKey {
	return NewContractKey(q.Strike, q.ExpireDate)
}
