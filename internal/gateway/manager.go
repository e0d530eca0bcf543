// Package gateway owns subscriber WebSocket sessions: accepting
// connections up to a hard cap, tracking each session's interest set, and
// fanning out candle/indicator events with a bounded, non-blocking,
// drop-oldest-of-kind queue per session.
package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"candlestream/internal/agg"
	"candlestream/internal/apierr"
	"candlestream/internal/model"
	"candlestream/internal/validate"
)

// Config holds the connection manager's tunables, loaded from environment
// variables by the caller.
type Config struct {
	MaxSessions      int
	QueueDepth       int
	HeartbeatSeconds int
	DropThreshold    int
	DropWindow       time.Duration
	DefaultExchange  string
	// DefaultTimeframes is applied to a subscribe/unsubscribe control
	// message that omits its own timeframe list (DEFAULT_TIMEFRAMES,
	// applied as the "timeframes pre-registered at startup" default).
	DefaultTimeframes []string
}

// StreamSubscriber receives subscribe/unsubscribe calls forwarded from a
// session's control messages, so the aggregator registry creates or tears
// down workers to match live subscriber interest.
type StreamSubscriber interface {
	Subscribe(sessionID, symbol, exchange string, timeframes []string)
	Unsubscribe(sessionID, symbol, exchange string, timeframes []string)
}

// Manager is the connection manager plus broadcaster: it accepts
// sessions, enforces MAX_SESSIONS, and dispatches aggregator/indicator
// events to every interested session's queue.
type Manager struct {
	cfg     Config
	log     *slog.Logger
	streams StreamSubscriber

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(cfg Config, log *slog.Logger) *Manager {
	return &Manager{cfg: cfg, log: log, sessions: make(map[string]*Session)}
}

// SetStreamSubscriber wires the aggregator registry a subscribe/unsubscribe
// control message should drive. Nil (the default) makes subscribe/
// unsubscribe pure session bookkeeping, which is all gateway's own tests
// need.
func (m *Manager) SetStreamSubscriber(s StreamSubscriber) {
	m.streams = s
}

// Accept registers a newly upgraded WebSocket connection as a session. It
// refuses the connection with a capacity error (never acquiring session
// state) once MAX_SESSIONS is reached.
func (m *Manager) Accept(conn *websocket.Conn) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, apierr.New(apierr.Capacity, "gateway is shutting down")
	}
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, apierr.New(apierr.Capacity, "max sessions reached")
	}
	s := newSession(conn, m, m.log)
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.log.Info("session accepted", "session_id", s.ID, "total_sessions", count)

	go s.writePump(time.Duration(m.cfg.HeartbeatSeconds) * time.Second)
	go s.readPump()
	return s, nil
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID)
	count := len(m.sessions)
	m.mu.Unlock()
	m.log.Info("session removed", "session_id", s.ID, "total_sessions", count)
}

// validateControl checks a subscribe/unsubscribe message against the same
// validators the REST boundary uses. Callers resolve an absent
// exchange or an absent timeframe list (against DEFAULT_EXCHANGE and
// DEFAULT_TIMEFRAMES respectively) before calling this, so an
// empty Timeframes here is only rejected if the configured default is
// also empty.
func (m *Manager) validateControl(msg controlMessage) *apierr.Error {
	exchange := msg.Exchange
	if exchange == "" {
		exchange = m.cfg.DefaultExchange
	}
	if _, err := validate.Exchange(exchange); err != nil {
		return err.(*apierr.Error)
	}
	if len(msg.Symbols) == 0 {
		return apierr.New(apierr.BadRequest, "at least one symbol is required")
	}
	for _, sym := range msg.Symbols {
		if _, err := validate.Symbol(sym); err != nil {
			return err.(*apierr.Error)
		}
	}
	if len(msg.Timeframes) == 0 {
		return apierr.New(apierr.BadRequest, "at least one timeframe is required")
	}
	for _, tf := range msg.Timeframes {
		if _, err := validate.Timeframe(tf); err != nil {
			return err.(*apierr.Error)
		}
	}
	return nil
}

// BroadcastCandle fans a CandleAggregator event out to every session
// subscribed to key. On a bucket rollover, ev carries both the just-closed
// bucket's Completed candle and the newly-opened bucket's Partial — these
// must go out completed-then-partial, never the reverse, so a subscriber
// never sees the new bucket's first partial before the prior bucket's
// completion. This is always called synchronously from the one worker
// goroutine that owns this (symbol, timeframe), so the order dispatchCandle
// is called in is the order sessions receive the messages in.
func (m *Manager) BroadcastCandle(key model.TFKey, ev agg.Events) {
	now := time.Now().UTC()
	if ev.Completed != nil {
		m.dispatchCandle(key, "candle", true, ev.Completed, now)
	}
	for i := range ev.Fills {
		m.dispatchCandle(key, "candle", true, &ev.Fills[i], now)
	}
	if ev.Partial != nil {
		m.dispatchCandle(key, "candle", false, ev.Partial, now)
	}
}

func (m *Manager) dispatchCandle(key model.TFKey, msgType string, complete bool, data interface{}, now time.Time) {
	env := candleEnvelope{
		Type: msgType, Symbol: key.Symbol, Timeframe: key.Timeframe,
		Complete: complete, Data: data, Timestamp: now,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	m.fanout(key, outboundMessage{Type: msgType, Symbol: key.Symbol, Timeframe: key.Timeframe, Payload: payload})
}

// BroadcastIndicators fans indicator results for key out to every
// subscribed session.
func (m *Manager) BroadcastIndicators(key model.TFKey, out map[string]model.IndicatorOutput) {
	env := indicatorEnvelope{
		Type: "indicator", Symbol: key.Symbol, Timeframe: key.Timeframe,
		Indicators: out, Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	m.fanout(key, outboundMessage{Type: "indicator", Symbol: key.Symbol, Timeframe: key.Timeframe, Payload: payload})
}

func (m *Manager) fanout(key model.TFKey, msg outboundMessage) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.interested(key.Exchange, key.Symbol, key.Timeframe) {
			s.enqueue(msg)
		}
	}
}

// SweepLiveness terminates any session that hasn't been heard from (data
// frame or pong) in longer than 2 * heartbeat.
func (m *Manager) SweepLiveness() {
	limit := 2 * time.Duration(m.cfg.HeartbeatSeconds) * time.Second
	m.mu.RLock()
	stale := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.idleSince() > limit {
			stale = append(stale, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range stale {
		s.terminate(apierr.Internal, "no heartbeat response")
	}
}

// RunLiveness sweeps for unresponsive sessions every heartbeat interval
// until ctx-equivalent stop is signaled by closing done.
func (m *Manager) RunLiveness(done <-chan struct{}) {
	interval := time.Duration(m.cfg.HeartbeatSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.SweepLiveness()
		}
	}
}

// SessionCount returns the number of currently registered sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops accepting new sessions and terminates every session still
// connected after drainDeadline elapses, discarding whatever remains queued.
func (m *Manager) Shutdown(drainDeadline time.Duration) {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	deadline := time.NewTimer(drainDeadline)
	defer deadline.Stop()
	<-deadline.C

	for _, s := range sessions {
		s.terminate(apierr.Internal, "server shutting down")
	}
}
