package models

import "fmt"

var (
	ErrNoQuotes = fmt.Errorf("no quotes: quote table is empty, nothing to simulate")
)
