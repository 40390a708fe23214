package models

import "fmt"

type BacktestConfig struct {
	InitialCapital   float64 `yaml:"initial_capital" json:"initial_capital"`
	PositionSize     float64 `yaml:"position_size" json:"position_size"`
	TransactionCost  float64 `yaml:"transaction_cost" json:"transaction_cost"`
	MaxPositions     int     `yaml:"max_positions" json:"max_positions"`
	CloseOnExpiry    bool    `yaml:"close_on_expiry" json:"close_on_expiry"`
	AllowPartialFill bool    `yaml:"allow_partial_fill" json:"allow_partial_fill"`
}

func NewBacktestConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital:   10000,
		PositionSize:     1000,
		TransactionCost:  0.50,
		MaxPositions:     10,
		CloseOnExpiry:    true,
		AllowPartialFill: false,
	}
}

func (c BacktestConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be greater than 0, got %.2f", c.InitialCapital)
	}

	if c.PositionSize <= 0 {
		return fmt.Errorf("position size must be greater than 0, got %.2f", c.PositionSize)
	}

	if c.TransactionCost < 0 {
		return fmt.Errorf("transaction cost cannot be negative, got %.2f", c.TransactionCost)
	}

	if c.MaxPositions <= 0 {
		return fmt.Errorf("max positions must be greater than 0, got %d", c.MaxPositions)
	}

	return nil
}
