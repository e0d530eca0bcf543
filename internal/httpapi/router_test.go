package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"candlestream/config"
	"candlestream/internal/dispatch"
	"candlestream/internal/gateway"
	"candlestream/internal/historical"
	"candlestream/internal/metrics"
	"candlestream/internal/model"
)

type fakeSource struct {
	candles []model.Candle
}

func (f *fakeSource) FetchCandles(ctx context.Context, symbol, exchange, interval string, start, end time.Time) ([]model.Candle, error) {
	return f.candles, nil
}

// sharedMetrics avoids prometheus.MustRegister panicking on duplicate
// registration when multiple tests in this file build their own Deps.
var (
	sharedMetrics     *metrics.Metrics
	sharedMetricsOnce sync.Once
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := dispatch.New(4, log)
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	t.Cleanup(pool.Release)

	source := &fakeSource{candles: []model.Candle{
		{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m", BucketStart: time.Now().UTC(), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10},
		{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m", BucketStart: time.Now().UTC(), Open: 100.5, High: 102, Low: 100, Close: 101.5, Volume: 12},
	}}
	adapter := historical.New(source, historical.DefaultConfig(), log)

	gw := gateway.NewManager(gateway.Config{MaxSessions: 10, QueueDepth: 8, HeartbeatSeconds: 30, DropThreshold: 3, DefaultExchange: "NSE"}, log)

	sharedMetricsOnce.Do(func() { sharedMetrics = metrics.NewMetrics() })

	return Deps{
		Historical: adapter,
		Dispatch:   pool,
		Gateway:    gw,
		Metrics:    sharedMetrics,
		Health:     metrics.NewHealthStatus(),
		Config:     &config.Config{MaxSessions: 10, CORSOrigins: []string{"*"}},
		Log:        log,
		StartedAt:  time.Now(),
	}
}

func TestCatalog_ReturnsKnownIndicators(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/indicators/available", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "indicators") {
		t.Fatalf("body missing indicators key: %s", rec.Body.String())
	}
}

func TestLatestIndicators_UnknownExchangeReturnsBadRequest(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/indicators/latest/RELIANCE?exchange=ZZZ&interval=1m", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}
}

func TestLatestIndicators_ValidRequestReturnsValues(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/indicators/latest/RELIANCE?exchange=NSE&interval=1m&indicators=sma", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestSupportResistancePivots_DefaultsToClassicMethod(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/support-resistance/RELIANCE/pivots?exchange=NSE&interval=1m", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"classic"`) {
		t.Fatalf("expected classic method in body, got %s", rec.Body.String())
	}
}

func TestSupportResistanceNearest_ReturnsLevels(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/support-resistance/RELIANCE/nearest?exchange=NSE&interval=1m&count=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCandlesPassthrough_ReturnsWindow(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/candles/RELIANCE?exchange=NSE&interval=1m", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestMetaEndpoints_ReturnOK(t *testing.T) {
	router := NewRouter(testDeps(t))
	for _, path := range []string{"/meta/timeframes", "/meta/exchanges", "/meta/system-status"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200; body=%s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestCORS_WildcardAllowsAnyOrigin(t *testing.T) {
	router := NewRouter(testDeps(t))
	req := httptest.NewRequest(http.MethodGet, "/meta/timeframes", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
