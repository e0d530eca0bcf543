// Package pipeline wires the aggregator registry's output to the
// subscriber-facing gateway: every event is broadcast as a candle message,
// and on candle completion the indicator engine runs over a per-(symbol,
// exchange,timeframe) rolling window so a second `indicator` message goes
// out alongside it ("if the indicator set for that subscriber
// references this timeframe, invokes the indicator engine" data flow).
package pipeline

import (
	"log/slog"
	"sync"

	"candlestream/internal/agg"
	"candlestream/internal/gateway"
	"candlestream/internal/indicator"
	"candlestream/internal/model"
	"candlestream/internal/ringbuf"
)

// Broadcaster is the subset of gateway.Manager this sink drives.
type Broadcaster interface {
	BroadcastCandle(key model.TFKey, ev agg.Events)
	BroadcastIndicators(key model.TFKey, out map[string]model.IndicatorOutput)
}

var _ Broadcaster = (*gateway.Manager)(nil)

// window is the rolling completed-candle history for one (symbol,
// exchange, timeframe). Only ever touched by the single worker goroutine
// that owns that key, per streammanager's EventSink contract, so it needs
// no lock of its own.
type window struct {
	candles []model.Candle
	diag    *ringbuf.Ring // mirrors the window for overflow/backlog diagnostics
}

// Sink implements streammanager.EventSink: broadcast every event, and run
// indicators over the rolling window whenever a bucket closes.
type Sink struct {
	gw         Broadcaster
	log        *slog.Logger
	indicators []string
	maxWindow  int

	mu      sync.Mutex
	windows map[model.TFKey]*window
}

// New constructs a Sink. indicators is the fixed set computed on every
// candle close; maxWindow bounds how much history is kept per key (and
// sizes each key's diagnostic ring buffer).
func New(gw Broadcaster, indicators []string, maxWindow int, log *slog.Logger) *Sink {
	if maxWindow <= 0 {
		maxWindow = 500
	}
	return &Sink{
		gw:         gw,
		log:        log,
		indicators: indicators,
		maxWindow:  maxWindow,
		windows:    make(map[model.TFKey]*window),
	}
}

// HandleEvents satisfies streammanager.EventSink.
func (s *Sink) HandleEvents(key model.TFKey, ev agg.Events) {
	s.gw.BroadcastCandle(key, ev)

	if ev.Dropped || (ev.Completed == nil && len(ev.Fills) == 0) {
		return
	}

	w := s.windowFor(key)
	for i := range ev.Fills {
		w.append(ev.Fills[i], s.maxWindow)
	}
	if ev.Completed != nil {
		w.append(*ev.Completed, s.maxWindow)
	}

	if len(s.indicators) == 0 || len(w.candles) == 0 {
		return
	}
	out, err := indicator.Compute(w.candles, s.indicators, nil)
	if err != nil {
		s.log.Warn("live indicator compute failed", "symbol", key.Symbol, "timeframe", key.Timeframe, "error", err)
		return
	}
	s.gw.BroadcastIndicators(key, out)
}

func (s *Sink) windowFor(key model.TFKey) *window {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok {
		w = &window{diag: ringbuf.New(s.maxWindow)}
		s.windows[key] = w
	}
	return w
}

func (w *window) append(c model.Candle, maxWindow int) {
	if !w.diag.Push(c) {
		w.diag.Pop() // drop oldest diagnostic entry, keep the ring moving
		w.diag.Push(c)
	}
	w.candles = append(w.candles, c)
	if len(w.candles) > maxWindow {
		w.candles = w.candles[len(w.candles)-maxWindow:]
	}
}
