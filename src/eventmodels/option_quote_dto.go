package eventmodels

import (
	"fmt"
	"time"
)

const quoteDateLayout = "2006-01-02"

type OptionQuoteDTO struct {
	QuoteDate      string  `csv:"QUOTE_DATE"`
	Strike         float64 `csv:"STRIKE"`
	ExpireDate     string  `csv:"EXPIRE_DATE"`
	Mid            float64 `csv:"C_MID"`
	UnderlyingLast float64 `csv:"UNDERLYING_LAST"`
	DTE            float64 `csv:"DTE"`
}

func (dto *OptionQuoteDTO) ToModel() (*OptionQuote, error) {
	quoteDate, err := time.Parse(quoteDateLayout, dto.QuoteDate)
	if err != nil {
		return nil, fmt.Errorf("OptionQuoteDTO: failed to parse quote date: %w", err)
	}

	expireDate, err := time.Parse(quoteDateLayout, dto.ExpireDate)
	if err != nil {
		return nil, fmt.Errorf("OptionQuoteDTO: failed to parse expire date: %w", err)
	}

	return &OptionQuote{
		QuoteDate:      quoteDate,
		Strike:         dto.Strike,
		ExpireDate:     expireDate,
		Mid:            dto.Mid,
		UnderlyingLast: dto.UnderlyingLast,
		DTE:            dto.DTE,
	}, nil
}
