package gateway

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"candlestream/internal/apierr"
)

const (
	writeWait  = 10 * time.Second
	maxMessage = 8192
)

// writePump drains the session's outbound queue, coalescing whatever is
// pending into newline-separated frames, and sends a protocol-level
// heartbeat ping every heartbeat interval.
func (s *Session) writePump(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.queue.notify:
			msgs := s.queue.drain()
			if len(msgs) == 0 {
				continue
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			for i, m := range msgs {
				if i > 0 {
					w.Write([]byte{'\n'})
				}
				w.Write(m.Payload)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump processes inbound control messages (subscribe/unsubscribe) and
// keeps lastSeen current from both data frames and pongs. The caller's
// liveness sweep (Manager.SweepLiveness) is what actually terminates an
// unresponsive session — readPump just feeds it fresh timestamps.
func (s *Session) readPump() {
	defer s.terminate(apierr.Internal, "connection closed")

	s.conn.SetReadLimit(maxMessage)
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.touch()

		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError(apierr.BadRequest, "malformed control message: "+err.Error())
			continue
		}
		s.handleControl(msg)
	}
}

func (s *Session) handleControl(msg controlMessage) {
	exchange := msg.Exchange
	if exchange == "" {
		exchange = s.mgr.cfg.DefaultExchange
	}
	timeframes := msg.Timeframes
	if len(timeframes) == 0 {
		timeframes = s.mgr.cfg.DefaultTimeframes
	}
	resolved := msg
	resolved.Exchange = exchange
	resolved.Timeframes = timeframes

	switch msg.Action {
	case "subscribe":
		if err := s.mgr.validateControl(resolved); err != nil {
			s.sendError(err.Kind, err.Message)
			return
		}
		s.subscribe(exchange, msg.Symbols, timeframes)
		if s.mgr.streams != nil {
			for _, sym := range msg.Symbols {
				s.mgr.streams.Subscribe(s.ID, sym, exchange, timeframes)
			}
		}
		s.sendAck("subscribed", msg.Symbols, timeframes)
	case "unsubscribe":
		if err := s.mgr.validateControl(resolved); err != nil {
			s.sendError(err.Kind, err.Message)
			return
		}
		s.unsubscribe(exchange, msg.Symbols, timeframes)
		if s.mgr.streams != nil {
			for _, sym := range msg.Symbols {
				s.mgr.streams.Unsubscribe(s.ID, sym, exchange, timeframes)
			}
		}
		s.sendAck("unsubscribed", msg.Symbols, timeframes)
	default:
		s.sendError(apierr.BadRequest, "unknown action: "+msg.Action)
	}
}

func (s *Session) sendAck(action string, symbols, timeframes []string) {
	env := ackEnvelope{Type: "ack", Action: action, Symbols: symbols, Timeframes: timeframes, Timestamp: time.Now().UTC()}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.enqueue(outboundMessage{Type: "ack", Payload: payload})
}

func (s *Session) sendError(kind apierr.Kind, message string) {
	env := errorEnvelope{Type: "error", Message: message, Kind: string(kind), Timestamp: time.Now().UTC()}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.enqueue(outboundMessage{Type: "error", Payload: payload})
}
