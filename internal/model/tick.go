// Package model holds the data types shared across the ingestion,
// aggregation, indicator, and support/resistance packages.
package model

import "time"

// Tick is a single trade print for one instrument.
type Tick struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	Price    float64   `json:"price"`
	Size     float64   `json:"size"`
	TS       time.Time `json:"ts"` // UTC event time
}

// Key returns "exchange:symbol".
func (t *Tick) Key() string {
	return t.Exchange + ":" + t.Symbol
}
