package eventmodels

import (
	"fmt"
	"strconv"
	"time"
)

type SignalEventDTO struct {
	QuoteDate  string  `csv:"QUOTE_DATE"`
	Strike     float64 `csv:"STRIKE"`
	ExpireDate string  `csv:"EXPIRE_DATE"`
	Signal     string  `csv:"signal"`
	Price      float64 `csv:"price"`
	Confidence string  `csv:"confidence"`
}

func (dto *SignalEventDTO) ToModel() (*SignalEvent, error) {
	quoteDate, err := time.Parse(quoteDateLayout, dto.QuoteDate)
	if err != nil {
		return nil, fmt.Errorf("SignalEventDTO: failed to parse quote date: %w", err)
	}

	expireDate, err := time.Parse(quoteDateLayout, dto.ExpireDate)
	if err != nil {
		return nil, fmt.Errorf("SignalEventDTO: failed to parse expire date: %w", err)
	}

	class, err := ParseSignalClass(dto.Signal)
	if err != nil {
		return nil, fmt.Errorf("SignalEventDTO: %w", err)
	}

	// confidence is optional: resolved here once, not re-checked in the loop
	var confidence *float64
	if dto.Confidence != "" {
		c, err := strconv.ParseFloat(dto.Confidence, 64)
		if err != nil {
			return nil, fmt.Errorf("SignalEventDTO: failed to parse confidence: %w", err)
		}

		confidence = &c
	}

	return &SignalEvent{
		QuoteDate:  quoteDate,
		Strike:     dto.Strike,
		ExpireDate: expireDate,
		Class:      class,
		Price:      dto.Price,
		Confidence: confidence,
	}, nil
}
