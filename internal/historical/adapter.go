package historical

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"candlestream/internal/apierr"
	"candlestream/internal/model"
)

// backoffSchedule is the literal retry schedule: three retries
// at 250ms, 500ms, 1s.
var backoffSchedule = []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second}

// Config controls the adapter's resilience policy.
type Config struct {
	CallTimeout    time.Duration // per-call deadline, default 10s
	RateLimit      rate.Limit    // outbound calls/sec allowed to the backend
	RateBurst      int
	BreakerTimeout time.Duration // how long the breaker stays open before probing again
}

// DefaultConfig returns this package's documented defaults.
func DefaultConfig() Config {
	return Config{
		CallTimeout:    10 * time.Second,
		RateLimit:      20,
		RateBurst:      20,
		BreakerTimeout: 30 * time.Second,
	}
}

// Adapter is the resilient façade request handlers call instead of talking
// to backend directly: per-call deadline, a fixed retry schedule for
// transient failures only, rate-limited outbound concurrency, and a
// circuit breaker so a persistently failing backend fails fast instead of
// retrying forever on every request.
type Adapter struct {
	backend Source
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	log     *slog.Logger
}

func New(backend Source, cfg Config, log *slog.Logger) *Adapter {
	settings := gobreaker.Settings{
		Name:    "historical_source",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("historical source circuit breaker state change", "from", from.String(), "to", to.String())
		},
	}
	return &Adapter{
		backend: backend,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		log:     log,
	}
}

// FetchCandles retries only transient (HistoricalUnavailable) failures, up
// to len(backoffSchedule) times, with the fixed backoff. A permanent
// failure (HistoricalInvalidRequest) or an open breaker returns
// immediately — neither is worth retrying.
func (a *Adapter) FetchCandles(ctx context.Context, symbol, exchange, interval string, start, end time.Time) ([]model.Candle, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apierr.New(apierr.HistoricalUnavailable, "rate limiter wait cancelled: "+err.Error())
	}

	var lastErr error
	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		candles, err := a.callOnce(ctx, symbol, exchange, interval, start, end)
		if err == nil {
			return candles, nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apierr.New(apierr.HistoricalUnavailable, "historical source circuit breaker is open")
		}

		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) || apiErr.Kind != apierr.HistoricalUnavailable {
			return nil, err // permanent failure: no retry
		}

		if attempt == len(backoffSchedule) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apierr.New(apierr.HistoricalUnavailable, "context cancelled during retry backoff")
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return nil, lastErr
}

func (a *Adapter) callOnce(ctx context.Context, symbol, exchange, interval string, start, end time.Time) ([]model.Candle, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	result, err := a.breaker.Execute(func() (interface{}, error) {
		candles, err := a.backend.FetchCandles(callCtx, symbol, exchange, interval, start, end)
		if err != nil {
			return nil, err
		}
		return candles, nil
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, apierr.New(apierr.HistoricalUnavailable, "historical source call exceeded deadline")
		}
		return nil, err
	}
	return result.([]model.Candle), nil
}

// State exposes the breaker's current state for metrics/introspection.
func (a *Adapter) State() gobreaker.State {
	return a.breaker.State()
}
