// Package historical wraps an external OHLCV history provider with the
// retry, rate-limiting, and circuit-breaking policy the adapter enforces.
// Values from a Source are the exclusive input to historical indicator and
// S/R requests; they are never merged into live aggregator state.
package historical

import (
	"context"
	"time"

	"candlestream/internal/model"
)

// Source is the external collaborator interface: one call, fetch_candles,
// sorted by timestamp ascending. Implementations classify their own
// failures by returning an *apierr.Error of kind HistoricalUnavailable
// (transient — worth retrying) or HistoricalInvalidRequest (permanent).
type Source interface {
	FetchCandles(ctx context.Context, symbol, exchange, interval string, start, end time.Time) ([]model.Candle, error)
}
