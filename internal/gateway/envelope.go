package gateway

import (
	"time"

	"candlestream/internal/model"
)

// outboundMessage is one item sitting in a session's bounded queue. Type,
// Symbol, and Timeframe identify it for the drop-oldest-of-same-kind
// policy; Payload is the already-marshaled wire envelope.
type outboundMessage struct {
	Type      string
	Symbol    string
	Timeframe string
	Payload   []byte
}

// candleEnvelope is the `candle` wire message: either a still-open
// PartialCandle (Complete=false) or a closed Candle (Complete=true).
type candleEnvelope struct {
	Type      string      `json:"type"`
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Complete  bool        `json:"complete"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// indicatorEnvelope is the `indicator` wire message.
type indicatorEnvelope struct {
	Type       string                        `json:"type"`
	Symbol     string                        `json:"symbol"`
	Timeframe  string                        `json:"timeframe"`
	Indicators map[string]model.IndicatorOutput `json:"indicators"`
	Timestamp  time.Time                     `json:"timestamp"`
}

// ackEnvelope confirms a subscribe/unsubscribe control message.
type ackEnvelope struct {
	Type       string    `json:"type"`
	Action     string    `json:"action"`
	Symbols    []string  `json:"symbols"`
	Timeframes []string  `json:"timeframes"`
	Timestamp  time.Time `json:"timestamp"`
}

// errorEnvelope reports a failed control message or a session-terminating
// condition (e.g. slow_consumer, capacity).
type errorEnvelope struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// controlMessage is the inbound shape sent by a subscriber.
type controlMessage struct {
	Action     string   `json:"action"` // "subscribe" | "unsubscribe"
	Symbols    []string `json:"symbols"`
	Exchange   string   `json:"exchange"`
	Timeframes []string `json:"timeframes"`
	Indicators []string `json:"indicators,omitempty"`
}
