// Package agg implements the per-(symbol,timeframe) candle aggregator —
// the hot loop that turns ticks into OHLCV+VWAP candles. One Aggregator
// instance owns exactly one bucket at a time and is driven by a single
// goroutine; it performs no I/O and takes no locks shared with other
// aggregators.
package agg

import (
	"time"

	"candlestream/internal/model"
	"candlestream/internal/timeframe"
)

// Events is the result of feeding one tick to the aggregator.
type Events struct {
	Partial   *model.PartialCandle
	Completed *model.Candle
	// Fills holds any synthetic flat candles emitted while bridging a gap,
	// in chronological order. Empty unless FillGaps is enabled.
	Fills []model.Candle
	// Dropped is true when the tick was discarded as late/out-of-tolerance.
	Dropped bool
}

// Config controls optional aggregator behavior.
type Config struct {
	// FillGaps, when true, emits synthetic flat candles (OHLC = last close,
	// volume = 0) for whole buckets strictly between a closed bucket and the
	// newly opened one. Default false: gaps are left unfilled.
	FillGaps bool
}

// Aggregator holds the open candle for one (symbol, exchange, timeframe).
// Not safe for concurrent OnTick calls — callers must serialize per the
// single-producer invariant.
type Aggregator struct {
	key       model.TFKey
	canonical string // normalized timeframe
	cfg       Config

	open      *model.Candle // nil when no bucket is currently open
	lastClose float64

	lateDropped int64
}

// New constructs an Aggregator for one (symbol, exchange, timeframe). tf
// must already be normalized (see internal/timeframe.Normalize).
func New(key model.TFKey, cfg Config) *Aggregator {
	return &Aggregator{key: key, canonical: key.Timeframe, cfg: cfg}
}

// LateDropped returns the running count of ticks dropped as too-late.
// Only safe to call from the aggregator's own goroutine, or after it has
// stopped.
func (a *Aggregator) LateDropped() int64 { return a.lateDropped }

// OnTick incorporates one tick into the aggregator state per the bucketing
// contract: a tick inside the open bucket updates it; a tick in a later
// bucket closes the open one (optionally filling the gap) and opens a new
// one; a tick behind the open bucket is always dropped and counted in
// LateDropped.
func (a *Aggregator) OnTick(price, size float64, ts time.Time) Events {
	b := timeframe.BucketStart(ts, a.canonical)

	if a.open == nil {
		a.openBucket(b, price, size)
		return Events{Partial: a.partialSnapshot()}
	}

	switch {
	case b.Equal(a.open.BucketStart):
		a.extend(price, size)
		return Events{Partial: a.partialSnapshot()}

	case b.After(a.open.BucketStart):
		closed := a.closeOpen()
		fills := a.fillGap(closed.BucketStart, b)
		a.openBucket(b, price, size)
		return Events{Completed: &closed, Fills: fills, Partial: a.partialSnapshot()}

	default: // b before open bucket: its bucket is already closed, or belongs
		// to a prior open bucket that has since rolled over. Bucket
		// granularity means b can never equal open.BucketStart here, so the
		// "apply if equal" clause never fires — this is always a drop.
		a.lateDropped++
		return Events{Dropped: true}
	}
}

// Flush closes any open bucket, for use at shutdown or subscriber teardown.
// Returns nil if no bucket was open.
func (a *Aggregator) Flush() *model.Candle {
	if a.open == nil {
		return nil
	}
	c := a.closeOpen()
	return &c
}

func (a *Aggregator) openBucket(b time.Time, price, size float64) {
	a.open = &model.Candle{
		Symbol:      a.key.Symbol,
		Exchange:    a.key.Exchange,
		Timeframe:   a.canonical,
		BucketStart: b,
		Open:        price,
		High:        price,
		Low:         price,
		Close:       price,
		Volume:      size,
		VWAP:        price,
		TickCount:   1,
	}
}

func (a *Aggregator) extend(price, size float64) {
	c := a.open
	if price > c.High {
		c.High = price
	}
	if price < c.Low {
		c.Low = price
	}
	c.Close = price
	newVol := c.Volume + size
	if newVol > 0 {
		c.VWAP = (c.VWAP*c.Volume + price*size) / newVol
	} else {
		c.VWAP = price
	}
	c.Volume = newVol
	c.TickCount++
}

func (a *Aggregator) closeOpen() model.Candle {
	c := *a.open
	if c.Volume == 0 {
		c.VWAP = c.Close
	}
	a.lastClose = c.Close
	a.open = nil
	return c
}

// fillGap emits synthetic flat candles for whole buckets strictly between
// closedBucket and next, when FillGaps is enabled. Runs in O(1) when
// disabled (the default) regardless of gap width.
func (a *Aggregator) fillGap(closedBucket, next time.Time) []model.Candle {
	if !a.cfg.FillGaps {
		return nil
	}
	var fills []model.Candle
	cursor := timeframe.NextBucketStart(closedBucket, a.canonical)
	for cursor.Before(next) {
		fills = append(fills, model.Candle{
			Symbol:      a.key.Symbol,
			Exchange:    a.key.Exchange,
			Timeframe:   a.canonical,
			BucketStart: cursor,
			Open:        a.lastClose,
			High:        a.lastClose,
			Low:         a.lastClose,
			Close:       a.lastClose,
			Volume:      0,
			VWAP:        a.lastClose,
			TickCount:   0,
		})
		cursor = timeframe.NextBucketStart(cursor, a.canonical)
	}
	return fills
}

func (a *Aggregator) partialSnapshot() *model.PartialCandle {
	c := *a.open
	return &model.PartialCandle{Candle: c, IsComplete: false}
}
