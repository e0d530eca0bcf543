// Command candled is the merged candle engine + subscriber gateway process:
// tick ingestion, per-(symbol,timeframe) aggregation, live indicator
// broadcast, and the REST/WebSocket surface all run in one binary, wired
// together here instead of split across two separate processes.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"candlestream/config"
	"candlestream/internal/agg"
	"candlestream/internal/dispatch"
	"candlestream/internal/gateway"
	"candlestream/internal/historical"
	"candlestream/internal/httpapi"
	"candlestream/internal/ingest"
	"candlestream/internal/lifecycle"
	"candlestream/internal/logger"
	"candlestream/internal/metrics"
	"candlestream/internal/pipeline"
	"candlestream/internal/streammanager"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[candled] starting...")

	cfg := config.Load()
	lg := logger.Init("candled", parseLevel(cfg.LogLevel))

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetEnabledTFs(cfg.DefaultTimeframes)
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	pool, err := dispatch.New(cfg.DispatchPoolSize, lg)
	if err != nil {
		log.Fatalf("[candled] dispatch pool init failed: %v", err)
	}

	source := historical.NewHTTPSource(cfg.HistoricalBaseURL, cfg.HistoricalTimeout())
	hcfg := historical.DefaultConfig()
	hcfg.RateLimit = rate.Limit(cfg.HistoricalRateLimit)
	hcfg.RateBurst = cfg.HistoricalRateBurst
	hcfg.BreakerTimeout = cfg.HistoricalBreakerTimeout()
	hcfg.CallTimeout = cfg.HistoricalTimeout()
	historicalAdapter := historical.New(source, hcfg, lg)

	gw := gateway.NewManager(gateway.Config{
		MaxSessions:       cfg.MaxSessions,
		QueueDepth:        cfg.QueueDepth,
		HeartbeatSeconds:  cfg.HeartbeatSeconds,
		DropThreshold:     cfg.DropThreshold,
		DropWindow:        cfg.DropWindow(),
		DefaultExchange:   cfg.DefaultExchange,
		DefaultTimeframes: cfg.DefaultTimeframes,
	}, lg)

	sink := pipeline.New(gw, cfg.LiveIndicators, cfg.TickBufferSize, lg)

	streams := streammanager.New(streammanager.Config{
		AggregatorConfig: agg.Config{},
		GracePeriod:      time.Duration(cfg.AggregatorGraceSeconds) * time.Second,
		InboundBuffer:    cfg.TickBufferSize,
	}, sink)

	gw.SetStreamSubscriber(streams)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	health.SetAggregatorOK(true)
	health.StartLivenessChecker(context.Background(), rdb, 10*time.Second)
	consumer := ingest.New(rdb, cfg.RedisTickChannel, streams, lg)

	router := httpapi.NewRouter(httpapi.Deps{
		Historical: historicalAdapter,
		Dispatch:   pool,
		Gateway:    gw,
		Metrics:    prom,
		Health:     health,
		Config:     cfg,
		Log:        lg,
		StartedAt:  time.Now(),
	})
	httpSrv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: router,
	}

	sup := lifecycle.New(30*time.Second, lg)

	liveness := make(chan struct{})
	go gw.RunLiveness(liveness)

	go func() {
		lg.Info("http server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("http server error", "error", err)
		}
	}()

	health.SetIngestConnected(true)
	go consumer.Run(sup.Context())

	sup.OnShutdown(func(ctx context.Context) {
		close(liveness)
		httpSrv.Shutdown(ctx)
	})
	sup.OnShutdown(func(ctx context.Context) {
		gw.Shutdown(5 * time.Second)
	})
	sup.OnShutdown(func(ctx context.Context) {
		streams.Shutdown()
	})
	sup.OnShutdown(func(ctx context.Context) {
		pool.Release()
	})
	sup.OnShutdown(func(ctx context.Context) {
		metricsSrv.Stop(ctx)
		rdb.Close()
	})

	lg.Info("candled ready", "timeframes", cfg.DefaultTimeframes, "port", cfg.Port)
	sup.Wait()
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
