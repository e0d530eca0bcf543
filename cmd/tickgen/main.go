// Command tickgen is a demo tick generator: a random walk per configured
// symbol, published as JSON-encoded model.Tick onto a Redis Pub/Sub
// channel, for exercising candled without a real exchange feed.
//
// Config (env vars):
//
//	REDIS_ADDR         — redis address (default: "localhost:6379")
//	REDIS_PASSWORD     — redis password (default: "")
//	REDIS_TICK_CHANNEL — channel to publish on (default: "ticks")
//	TICKGEN_SYMBOLS    — comma-separated SYMBOL:EXCHANGE pairs (default: "RELIANCE:NSE")
//	TICKGEN_INTERVAL_MS — publish interval in milliseconds (default: "100")
package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"candlestream/internal/model"
)

// instrument holds per-symbol simulation state.
type instrument struct {
	Symbol   string
	Exchange string
	Price    float64
}

// defaultPrices gives a handful of named symbols a plausible starting
// price; anything else starts at 1000.
var defaultPrices = map[string]float64{
	"RELIANCE": 2860.50,
	"TCS":      3950.00,
	"NIFTY50":  25660.00,
	"BANKNIFTY": 54200.00,
}

func walkPrice(price float64) float64 {
	pct := (rand.Float64()*0.2 - 0.1) / 100.0
	newPrice := price + price*pct
	if newPrice < 0.01 {
		newPrice = 0.01
	}
	return newPrice
}

func runGenerator(ctx context.Context, rdb *goredis.Client, channel string, instruments []instrument, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i := range instruments {
				instruments[i].Price = walkPrice(instruments[i].Price)
				tick := model.Tick{
					Symbol:   instruments[i].Symbol,
					Exchange: instruments[i].Exchange,
					Price:    instruments[i].Price,
					Size:     float64(rand.Intn(100) + 1),
					TS:       time.Now().UTC(),
				}
				payload, err := json.Marshal(tick)
				if err != nil {
					continue
				}
				if err := rdb.Publish(ctx, channel, payload).Err(); err != nil {
					log.Printf("[tickgen] publish failed: %v", err)
				}
			}
		}
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[tickgen] starting demo tick generator...")

	redisAddr := envOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := envOrDefault("REDIS_PASSWORD", "")
	channel := envOrDefault("REDIS_TICK_CHANNEL", "ticks")
	symbolsEnv := envOrDefault("TICKGEN_SYMBOLS", "RELIANCE:NSE")
	intervalMs := envIntOrDefault("TICKGEN_INTERVAL_MS", 100)

	instruments := parseInstruments(symbolsEnv)
	if len(instruments) == 0 {
		log.Fatalf("[tickgen] no instruments configured via TICKGEN_SYMBOLS")
	}
	log.Printf("[tickgen] instruments: %+v", instruments)
	log.Printf("[tickgen] publish interval: %dms, channel: %s", intervalMs, channel)

	rdb := goredis.NewClient(&goredis.Options{Addr: redisAddr, Password: redisPassword})

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[tickgen] shutdown signal received")
		cancel()
	}()

	runGenerator(ctx, rdb, channel, instruments, time.Duration(intervalMs)*time.Millisecond)

	rdb.Close()
	log.Println("[tickgen] stopped.")
}

func parseInstruments(s string) []instrument {
	var result []instrument
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		seg := strings.SplitN(part, ":", 2)
		if len(seg) != 2 {
			log.Printf("[tickgen] skipping invalid symbol entry: %q", part)
			continue
		}
		symbol, exchange := strings.TrimSpace(seg[0]), strings.TrimSpace(seg[1])
		price, ok := defaultPrices[symbol]
		if !ok {
			price = 1000.00
		}
		result = append(result, instrument{Symbol: symbol, Exchange: exchange, Price: price})
	}
	return result
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
