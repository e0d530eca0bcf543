// Package httpapi implements the REST boundary: thin,
// non-core handlers for indicator calculation, support/resistance lookup,
// historical candle pass-through, and system introspection. The
// subscriber-facing WebSocket endpoint is mounted here too, backed by
// internal/gateway.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"candlestream/config"
	"candlestream/internal/dispatch"
	"candlestream/internal/gateway"
	"candlestream/internal/historical"
	"candlestream/internal/metrics"
)

// Deps are the collaborators handlers need. All are required.
type Deps struct {
	Historical *historical.Adapter
	Dispatch   *dispatch.Pool
	Gateway    *gateway.Manager
	Metrics    *metrics.Metrics
	Health     *metrics.HealthStatus
	Config     *config.Config
	Log        *slog.Logger
	StartedAt  time.Time
}

type handler struct {
	deps Deps
}

// NewRouter builds the REST + WebSocket surface.
func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("/indicators/calculate", h.calculateIndicators)
	mux.HandleFunc("/indicators/multi-timeframe", h.multiTimeframeIndicators)
	mux.HandleFunc("/indicators/latest/", h.latestIndicators)
	mux.HandleFunc("/indicators/available", h.catalog)

	mux.HandleFunc("/support-resistance/", h.supportResistance)

	mux.HandleFunc("/candles/", h.candlesPassthrough)

	mux.HandleFunc("/meta/timeframes", h.metaTimeframes)
	mux.HandleFunc("/meta/exchanges", h.metaExchanges)
	mux.HandleFunc("/meta/system-status", h.metaSystemStatus)

	mux.Handle("/ws", deps.Gateway)

	return withCORS(deps.Config.CORSOrigins, mux)
}

func withCORS(origins []string, next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
