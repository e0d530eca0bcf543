package schema

import "time"

// TimeframesResponse answers GET /meta/timeframes.
type TimeframesResponse struct {
	Timeframes []string `json:"timeframes"`
}

// ExchangesResponse answers GET /meta/exchanges.
type ExchangesResponse struct {
	Exchanges []string `json:"exchanges"`
}

// SystemStatusResponse answers GET /meta/system-status.
type SystemStatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	SessionsActive  int       `json:"sessions_active"`
	MaxSessions     int       `json:"max_sessions"`
	IngestConnected bool      `json:"ingest_connected"`
	LastTickTime    time.Time `json:"last_tick_time"`
}

// ErrorResponse is the uniform JSON error body for the REST surface,
// mirroring the wire envelope's error shape for consistency
// between the WebSocket and REST boundaries.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}
