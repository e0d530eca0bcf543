package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"candlestream/internal/apierr"
)

// subKey identifies one (exchange, symbol, timeframe) a session can be
// interested in.
type subKey struct {
	Exchange  string
	Symbol    string
	Timeframe string
}

// Session is one accepted subscriber connection: its subscription set, its
// bounded outbound queue, and the bookkeeping needed to detect and evict a
// slow consumer.
type Session struct {
	ID   string
	conn *websocket.Conn
	mgr  *Manager
	log  *slog.Logger

	queue *outboundQueue

	subMu sync.RWMutex
	subs  map[subKey]struct{}

	dropMu          sync.Mutex
	drops           int
	dropWindowStart time.Time

	lastSeenMu sync.Mutex
	lastSeen   time.Time

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, mgr *Manager, log *slog.Logger) *Session {
	return &Session{
		ID:       uuid.NewString(),
		conn:     conn,
		mgr:      mgr,
		log:      log,
		queue:    newOutboundQueue(mgr.cfg.QueueDepth),
		subs:     make(map[subKey]struct{}),
		lastSeen: time.Now(),
		done:     make(chan struct{}),
	}
}

func (s *Session) touch() {
	s.lastSeenMu.Lock()
	s.lastSeen = time.Now()
	s.lastSeenMu.Unlock()
}

func (s *Session) idleSince() time.Duration {
	s.lastSeenMu.Lock()
	defer s.lastSeenMu.Unlock()
	return time.Since(s.lastSeen)
}

func (s *Session) interested(exchange, symbol, timeframe string) bool {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	_, ok := s.subs[subKey{exchange, symbol, timeframe}]
	return ok
}

func (s *Session) subscribe(exchange string, symbols, timeframes []string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sym := range symbols {
		for _, tf := range timeframes {
			s.subs[subKey{exchange, sym, tf}] = struct{}{}
		}
	}
}

func (s *Session) unsubscribe(exchange string, symbols, timeframes []string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sym := range symbols {
		for _, tf := range timeframes {
			delete(s.subs, subKey{exchange, sym, tf})
		}
	}
}

// enqueue attempts a non-blocking send of msg onto this session's queue,
// applying the drop-oldest-of-same-kind policy. A dropped message bumps the
// session's rolling-window drop counter and may trigger termination.
func (s *Session) enqueue(msg outboundMessage) {
	if s.queue.push(msg) {
		s.recordDrop()
	}
}

func (s *Session) recordDrop() {
	now := time.Now()
	s.dropMu.Lock()
	if now.Sub(s.dropWindowStart) > s.mgr.cfg.DropWindow {
		s.dropWindowStart = now
		s.drops = 0
	}
	s.drops++
	exceeded := s.drops > s.mgr.cfg.DropThreshold
	s.dropMu.Unlock()

	if exceeded {
		s.terminate(apierr.SlowConsumer, "too many dropped messages")
	}
}

// terminate sends a final error envelope (best effort) and closes the
// session. Safe to call more than once.
func (s *Session) terminate(kind apierr.Kind, message string) {
	s.closeOnce.Do(func() {
		env := errorEnvelope{Type: "error", Message: message, Kind: string(kind), Timestamp: time.Now().UTC()}
		if payload, err := json.Marshal(env); err == nil {
			s.conn.SetWriteDeadline(time.Now().Add(time.Second))
			s.conn.WriteMessage(websocket.TextMessage, payload)
		}
		close(s.done)
		s.queue.close()
		s.conn.Close()
		s.mgr.remove(s)
		s.unsubscribeAll()
	})
}

// unsubscribeAll releases this session's interest in every (symbol,
// exchange, timeframe) it held, so the aggregator registry can tear down
// workers with no remaining subscribers once this session disconnects
// without an explicit unsubscribe.
func (s *Session) unsubscribeAll() {
	if s.mgr.streams == nil {
		return
	}
	s.subMu.RLock()
	keys := make([]subKey, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	s.subMu.RUnlock()

	for _, k := range keys {
		s.mgr.streams.Unsubscribe(s.ID, k.Symbol, k.Exchange, []string{k.Timeframe})
	}
}
