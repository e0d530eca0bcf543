package model

// TFKey identifies one (symbol, exchange, timeframe) stream.
type TFKey struct {
	Symbol    string
	Exchange  string
	Timeframe string
}

// String returns "exchange:symbol:timeframe".
func (k TFKey) String() string {
	return k.Exchange + ":" + k.Symbol + ":" + k.Timeframe
}

// Subscription is one session's interest in a (symbol, timeframe), with an
// optional indicator-name filter. There is no deduplication across sessions:
// two sessions may hold identical subscriptions.
type Subscription struct {
	Key        TFKey
	Indicators []string // empty means "no indicator stream for this key"
}
