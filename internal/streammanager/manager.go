// Package streammanager owns the registry of per-(symbol,timeframe)
// aggregators and routes incoming ticks to them. It is multi-producer
// (ingestion calls ProcessTick from many goroutines) and multi-consumer
// (many aggregators run concurrently), while each individual aggregator
// stays pinned to its own single-threaded worker so the aggregator's
// single-producer contract holds.
package streammanager

import (
	"sync"
	"time"

	"candlestream/internal/agg"
	"candlestream/internal/model"
)

// EventSink receives the events produced by one aggregator's worker. It is
// called from that worker's goroutine — implementations must not block on
// shared locks contended with other aggregators.
type EventSink interface {
	HandleEvents(key model.TFKey, ev agg.Events)
}

// Config controls the manager's resource policy.
type Config struct {
	AggregatorConfig agg.Config
	// GracePeriod is how long an aggregator with no interested sessions
	// survives before being torn down. Zero means immediate teardown.
	GracePeriod time.Duration
	// InboundBuffer sizes each aggregator worker's inbound tick channel.
	InboundBuffer int
}

type tickMsg struct {
	price, size float64
	ts          time.Time
}

// worker pins one aggregator to a single goroutine.
type worker struct {
	key     model.TFKey
	agg     *agg.Aggregator
	inbound chan tickMsg
	done    chan struct{}

	mu         sync.Mutex
	sessions   map[string]struct{}
	teardownAt *time.Timer
}

// Manager is the aggregator registry plus subscription bookkeeping.
type Manager struct {
	cfg  Config
	sink EventSink

	mu        sync.RWMutex
	workers   map[model.TFKey]*worker
	bySymbol  map[string][]model.TFKey // "exchange:symbol" -> keys with a live worker
}

// New constructs a Manager. sink receives every aggregator's emitted events.
func New(cfg Config, sink EventSink) *Manager {
	if cfg.InboundBuffer <= 0 {
		cfg.InboundBuffer = 64
	}
	return &Manager{
		cfg:      cfg,
		sink:     sink,
		workers:  make(map[model.TFKey]*worker),
		bySymbol: make(map[string][]model.TFKey),
	}
}

func symbolIndex(exchange, symbol string) string { return exchange + ":" + symbol }

// Subscribe registers sessionID's interest in (symbol, exchange) across the
// given timeframes, creating any missing aggregator workers. Creation never
// triggers a data fetch — the aggregator starts empty.
func (m *Manager) Subscribe(sessionID, symbol, exchange string, timeframes []string) {
	for _, tf := range timeframes {
		key := model.TFKey{Symbol: symbol, Exchange: exchange, Timeframe: tf}
		w := m.getOrCreateWorker(key)
		w.mu.Lock()
		if w.teardownAt != nil {
			w.teardownAt.Stop()
			w.teardownAt = nil
		}
		w.sessions[sessionID] = struct{}{}
		w.mu.Unlock()
	}
}

// Unsubscribe removes sessionID's interest in the given timeframes for
// (symbol, exchange). If a worker's session set becomes empty, its teardown
// is scheduled after the configured grace period.
func (m *Manager) Unsubscribe(sessionID, symbol, exchange string, timeframes []string) {
	for _, tf := range timeframes {
		key := model.TFKey{Symbol: symbol, Exchange: exchange, Timeframe: tf}
		m.mu.RLock()
		w, ok := m.workers[key]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		w.mu.Lock()
		delete(w.sessions, sessionID)
		empty := len(w.sessions) == 0
		if empty && w.teardownAt == nil {
			w.teardownAt = time.AfterFunc(m.cfg.GracePeriod, func() { m.teardown(key) })
		}
		w.mu.Unlock()
	}
}

func (m *Manager) getOrCreateWorker(key model.TFKey) *worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[key]; ok {
		return w
	}
	w := &worker{
		key:      key,
		agg:      agg.New(key, m.cfg.AggregatorConfig),
		inbound:  make(chan tickMsg, m.cfg.InboundBuffer),
		done:     make(chan struct{}),
		sessions: make(map[string]struct{}),
	}
	m.workers[key] = w
	idx := symbolIndex(key.Exchange, key.Symbol)
	m.bySymbol[idx] = append(m.bySymbol[idx], key)
	go m.runWorker(w)
	return w
}

func (m *Manager) runWorker(w *worker) {
	for {
		select {
		case msg, ok := <-w.inbound:
			if !ok {
				if c := w.agg.Flush(); c != nil {
					m.sink.HandleEvents(w.key, agg.Events{Completed: c})
				}
				return
			}
			ev := w.agg.OnTick(msg.price, msg.size, msg.ts)
			m.sink.HandleEvents(w.key, ev)
		case <-w.done:
			if c := w.agg.Flush(); c != nil {
				m.sink.HandleEvents(w.key, agg.Events{Completed: c})
			}
			return
		}
	}
}

func (m *Manager) teardown(key model.TFKey) {
	m.mu.Lock()
	w, ok := m.workers[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	w.mu.Lock()
	stillEmpty := len(w.sessions) == 0
	w.mu.Unlock()
	if !stillEmpty {
		m.mu.Unlock()
		return
	}
	delete(m.workers, key)
	idx := symbolIndex(key.Exchange, key.Symbol)
	keys := m.bySymbol[idx]
	for i, k := range keys {
		if k == key {
			m.bySymbol[idx] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	close(w.done)
}

// ProcessTick dispatches tick to every live aggregator registered for its
// (exchange, symbol), regardless of which timeframes the caller knows
// about. Each per-aggregator send is non-blocking: a full inbound buffer
// means that aggregator's worker is behind, and the tick is dropped for it
// rather than stalling the ingestion goroutine.
func (m *Manager) ProcessTick(tick model.Tick) {
	idx := symbolIndex(tick.Exchange, tick.Symbol)
	m.mu.RLock()
	keys := append([]model.TFKey(nil), m.bySymbol[idx]...)
	workers := make([]*worker, 0, len(keys))
	for _, k := range keys {
		workers = append(workers, m.workers[k])
	}
	m.mu.RUnlock()

	msg := tickMsg{price: tick.Price, size: tick.Size, ts: tick.TS}
	for _, w := range workers {
		if w == nil {
			continue
		}
		select {
		case w.inbound <- msg:
		default:
		}
	}
}

// Shutdown stops every worker, flushing its open candle.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	workers := make([]*worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	m.workers = make(map[model.TFKey]*worker)
	m.bySymbol = make(map[string][]model.TFKey)
	m.mu.Unlock()

	for _, w := range workers {
		close(w.done)
	}
}
