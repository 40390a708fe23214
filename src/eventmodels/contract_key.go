package eventmodels

import (
	"fmt"
	"time"
)

// ContractKey identifies an option contract by (strike, expiry). The source
// tables carry no call/put flag, so calls and puts share one key namespace.
type ContractKey struct {
	Strike     float64
	ExpireDate time.Time
}

func NewContractKey(strike float64, expireDate time.Time) ContractKey {
	return ContractKey{
		Strike:     strike,
		ExpireDate: expireDate,
	}
}

func (k ContractKey) String() string {
	return fmt.Sprintf("%.2f@%s", k.Strike, k.ExpireDate.Format("2006-01-02"))
}
