// Package config loads candlestream's configuration from environment
// variables, in the getEnv style established here: typed fields,
// documented defaults, no config file, no viper.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Connection manager
	MaxSessions            int
	QueueDepth             int
	HeartbeatSeconds       int
	DropThreshold          int
	DropWindowSeconds      int
	AggregatorGraceSeconds int
	DefaultTimeframes      []string
	TickBufferSize         int
	HistoricalTimeoutMs    int
	CORSOrigins            []string
	LogLevel               string
	Host                   string
	Port                   string

	// Default exchange assumed when a subscribe/control message omits one.
	DefaultExchange string

	// Historical source resilience
	HistoricalRateLimit          float64
	HistoricalRateBurst          int
	HistoricalBreakerTimeoutSecs int

	// Tick ingestion transport
	RedisAddr        string
	RedisPassword    string
	RedisTickChannel string

	// Request dispatch pool
	DispatchPoolSize int

	// Historical source backend
	HistoricalBaseURL string

	// Indicators computed and broadcast automatically on every candle
	// close, in addition to whatever a REST caller requests explicitly.
	LiveIndicators []string

	// Observability
	MetricsAddr string
}

// Load reads configuration from environment variables, falling back to
// this package's documented defaults for anything unset.
func Load() *Config {
	return &Config{
		MaxSessions:            getEnvInt("MAX_SESSIONS", 100),
		QueueDepth:             getEnvInt("QUEUE_DEPTH", 256),
		HeartbeatSeconds:       getEnvInt("HEARTBEAT_SECONDS", 30),
		DropThreshold:          getEnvInt("DROP_THRESHOLD", 64),
		DropWindowSeconds:      getEnvInt("DROP_WINDOW_SECONDS", 10),
		AggregatorGraceSeconds: getEnvInt("AGGREGATOR_GRACE_SECONDS", 60),
		DefaultTimeframes:      getEnvList("DEFAULT_TIMEFRAMES", nil),
		TickBufferSize:         getEnvInt("TICK_BUFFER_SIZE", 500),
		HistoricalTimeoutMs:    getEnvInt("HISTORICAL_TIMEOUT_MS", 10000),
		CORSOrigins:            getEnvList("CORS_ORIGINS", []string{"*"}),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		Host:                   getEnv("HOST", "0.0.0.0"),
		Port:                   getEnv("PORT", "8080"),

		DefaultExchange: getEnv("DEFAULT_EXCHANGE", "NSE"),

		HistoricalRateLimit:          getEnvFloat("HISTORICAL_RATE_LIMIT", 20),
		HistoricalRateBurst:          getEnvInt("HISTORICAL_RATE_BURST", 20),
		HistoricalBreakerTimeoutSecs: getEnvInt("HISTORICAL_BREAKER_TIMEOUT_SECONDS", 30),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTickChannel: getEnv("REDIS_TICK_CHANNEL", "ticks"),

		DispatchPoolSize: getEnvInt("DISPATCH_POOL_SIZE", 32),

		HistoricalBaseURL: getEnv("HISTORICAL_BASE_URL", "http://localhost:9100/history"),
		LiveIndicators:    getEnvList("LIVE_INDICATORS", []string{"sma", "ema", "rsi", "macd"}),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}
}

// HistoricalTimeout is HistoricalTimeoutMs as a time.Duration.
func (c *Config) HistoricalTimeout() time.Duration {
	return time.Duration(c.HistoricalTimeoutMs) * time.Millisecond
}

// DropWindow is DropWindowSeconds as a time.Duration.
func (c *Config) DropWindow() time.Duration {
	return time.Duration(c.DropWindowSeconds) * time.Second
}

// HistoricalBreakerTimeout is HistoricalBreakerTimeoutSecs as a time.Duration.
func (c *Config) HistoricalBreakerTimeout() time.Duration {
	return time.Duration(c.HistoricalBreakerTimeoutSecs) * time.Second
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s=%q, using default %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
