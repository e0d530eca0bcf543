package httpapi

import (
	"net/http"
	"time"

	"candlestream/internal/schema"
	"candlestream/internal/timeframe"
	"candlestream/internal/validate"
)

func (h *handler) metaTimeframes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.TimeframesResponse{Timeframes: timeframe.All()})
}

func (h *handler) metaExchanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.ExchangesResponse{Exchanges: validate.Exchanges()})
}

func (h *handler) metaSystemStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.deps.Health.Snapshot()
	status := "ok"
	if !snap.IngestConnected || !snap.AggregatorOK {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, schema.SystemStatusResponse{
		Status:          status,
		Uptime:          time.Since(h.deps.StartedAt).String(),
		SessionsActive:  h.deps.Gateway.SessionCount(),
		MaxSessions:     h.deps.Config.MaxSessions,
		IngestConnected: snap.IngestConnected,
		LastTickTime:    snap.LastTickTime,
	})
}
