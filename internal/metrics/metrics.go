// Package metrics holds the Prometheus collectors for candlestream's hot
// paths: tick ingestion, candle aggregation, indicator/S-R compute, session
// fan-out, and historical-source resilience.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the candle engine.
type Metrics struct {
	TicksTotal       prometheus.Counter
	TicksLateDropped prometheus.Counter

	CandlesPartialTotal   *prometheus.CounterVec // labels: timeframe
	CandlesCompletedTotal *prometheus.CounterVec // labels: timeframe

	IndicatorComputeDur prometheus.Histogram
	IndicatorsTotal     prometheus.Counter

	SRComputeDur prometheus.Histogram
	SRRunsTotal  prometheus.Counter

	SessionsActive           prometheus.Gauge
	SessionDropsTotal        prometheus.Counter
	SlowConsumerTerminations prometheus.Counter
	CapacityRejectionsTotal  prometheus.Counter

	HistoricalFetchRetries        prometheus.Counter
	HistoricalCircuitBreakerState prometheus.Gauge // 0=closed, 1=half-open, 2=open
	HistoricalCircuitBreakerTrips prometheus.Counter

	DispatchPoolRejections prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_ticks_total",
			Help: "Total ticks accepted into the aggregation pipeline",
		}),
		TicksLateDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_ticks_late_dropped_total",
			Help: "Ticks dropped for arriving behind the current bucket watermark",
		}),

		CandlesPartialTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candlestream_candles_partial_total",
			Help: "Partial candle updates emitted, by timeframe",
		}, []string{"timeframe"}),
		CandlesCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candlestream_candles_completed_total",
			Help: "Completed candles emitted, by timeframe",
		}, []string{"timeframe"}),

		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candlestream_indicator_compute_duration_seconds",
			Help:    "Indicator engine compute latency per request",
			Buckets: prometheus.DefBuckets,
		}),
		IndicatorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_indicators_total",
			Help: "Total indicator values computed",
		}),

		SRComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candlestream_sr_compute_duration_seconds",
			Help:    "Support/resistance engine compute latency per run",
			Buckets: prometheus.DefBuckets,
		}),
		SRRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_sr_runs_total",
			Help: "Total support/resistance engine runs",
		}),

		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candlestream_sessions_active",
			Help: "Currently connected subscriber sessions",
		}),
		SessionDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_session_drops_total",
			Help: "Outbound messages dropped from session queues",
		}),
		SlowConsumerTerminations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_slow_consumer_terminations_total",
			Help: "Sessions terminated for exceeding the drop threshold",
		}),
		CapacityRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_capacity_rejections_total",
			Help: "Connection attempts refused because MAX_SESSIONS was reached",
		}),

		HistoricalFetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_historical_fetch_retries_total",
			Help: "Retry attempts issued by the historical source adapter",
		}),
		HistoricalCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candlestream_historical_circuit_breaker_state",
			Help: "Historical source circuit breaker state (0=closed, 1=half-open, 2=open)",
		}),
		HistoricalCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_historical_circuit_breaker_trips_total",
			Help: "Times the historical source circuit breaker tripped open",
		}),

		DispatchPoolRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlestream_dispatch_pool_rejections_total",
			Help: "REST-triggered compute requests rejected because the dispatch pool was saturated",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.TicksLateDropped,
		m.CandlesPartialTotal,
		m.CandlesCompletedTotal,
		m.IndicatorComputeDur,
		m.IndicatorsTotal,
		m.SRComputeDur,
		m.SRRunsTotal,
		m.SessionsActive,
		m.SessionDropsTotal,
		m.SlowConsumerTerminations,
		m.CapacityRejectionsTotal,
		m.HistoricalFetchRetries,
		m.HistoricalCircuitBreakerState,
		m.HistoricalCircuitBreakerTrips,
		m.DispatchPoolRejections,
	)

	return m
}

// HealthStatus represents the system's current liveness/readiness state.
type HealthStatus struct {
	mu sync.RWMutex

	IngestConnected bool      `json:"ingest_connected"`
	LastTickTime    time.Time `json:"last_tick_time"`
	AggregatorOK    bool      `json:"aggregator_ok"`
	IndicatorOK     bool      `json:"indicator_ok"`
	EnabledTFs      []string  `json:"enabled_timeframes"`

	RedisLatencyMs float64   `json:"redis_latency_ms"`
	LastCheckAt    time.Time `json:"last_check_at"`
	StartedAt      time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetIngestConnected(v bool) {
	h.mu.Lock()
	h.IngestConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetAggregatorOK(v bool) {
	h.mu.Lock()
	h.AggregatorOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetIndicatorOK(v bool) {
	h.mu.Lock()
	h.IndicatorOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetEnabledTFs(tfs []string) {
	h.mu.Lock()
	h.EnabledTFs = tfs
	h.mu.Unlock()
}

// Snapshot returns a copy of the current health fields, safe for concurrent
// read while SetXxx/CheckRedis mutate the original.
func (h *HealthStatus) Snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthStatus{
		IngestConnected: h.IngestConnected,
		LastTickTime:    h.LastTickTime,
		AggregatorOK:    h.AggregatorOK,
		IndicatorOK:     h.IndicatorOK,
		EnabledTFs:      h.EnabledTFs,
		RedisLatencyMs:  h.RedisLatencyMs,
		LastCheckAt:     h.LastCheckAt,
		StartedAt:       h.StartedAt,
	}
}

// CheckRedis pings the ingest Redis connection and records latency.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.IngestConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.IngestConnected || !h.AggregatorOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.IngestConnected && !h.AggregatorOK {
		overallStatus = "unhealthy"
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string   `json:"status"`
		Uptime          string   `json:"uptime"`
		IngestConnected bool     `json:"ingest_connected"`
		LastTickTime    string   `json:"last_tick_time"`
		TickAge         string   `json:"tick_age"`
		RedisLatencyMs  float64  `json:"redis_latency_ms"`
		AggregatorOK    bool     `json:"aggregator_ok"`
		IndicatorOK     bool     `json:"indicator_ok"`
		EnabledTFs      []string `json:"enabled_timeframes"`
		LastCheckAt     string   `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		IngestConnected: h.IngestConnected,
		LastTickTime:    h.LastTickTime.Format(time.RFC3339),
		TickAge:         tickAge,
		RedisLatencyMs:  h.RedisLatencyMs,
		AggregatorOK:    h.AggregatorOK,
		IndicatorOK:     h.IndicatorOK,
		EnabledTFs:      h.EnabledTFs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
