package model

import "time"

// Candle is an immutable OHLCV+VWAP bar for one (symbol, timeframe) bucket.
// Ownership: exclusively owned by the aggregator that produced it until
// emitted; after emission it is never mutated and may be read concurrently.
type Candle struct {
	Symbol      string    `json:"symbol"`
	Exchange    string    `json:"exchange"`
	Timeframe   string    `json:"timeframe"`   // canonical form, e.g. "1m"
	BucketStart time.Time `json:"bucket_start"` // UTC, aligned to timeframe
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	VWAP        float64   `json:"vwap"`
	TickCount   int       `json:"tick_count"`
}

// Key returns "exchange:symbol:timeframe".
func (c *Candle) Key() string {
	return c.Exchange + ":" + c.Symbol + ":" + c.Timeframe
}

// PartialCandle is the currently-open candle for a bucket that hasn't
// closed yet. Its values change on every tick.
type PartialCandle struct {
	Candle
	IsComplete bool `json:"is_complete"`
}
