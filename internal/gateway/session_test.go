package gateway

import (
	"log/slog"
	"testing"
)

func testSession() *Session {
	return &Session{subs: make(map[subKey]struct{})}
}

func TestSession_SubscribeThenInterested(t *testing.T) {
	s := testSession()
	s.subscribe("NSE", []string{"TCS", "INFY"}, []string{"1m", "5m"})

	cases := []struct {
		symbol, tf string
		want       bool
	}{
		{"TCS", "1m", true},
		{"TCS", "5m", true},
		{"INFY", "1m", true},
		{"WIPRO", "1m", false},
		{"TCS", "1h", false},
	}
	for _, c := range cases {
		if got := s.interested("NSE", c.symbol, c.tf); got != c.want {
			t.Errorf("interested(NSE,%s,%s) = %v, want %v", c.symbol, c.tf, got, c.want)
		}
	}
}

func TestSession_UnsubscribeRemovesInterest(t *testing.T) {
	s := testSession()
	s.subscribe("NSE", []string{"TCS"}, []string{"1m"})
	s.unsubscribe("NSE", []string{"TCS"}, []string{"1m"})

	if s.interested("NSE", "TCS", "1m") {
		t.Fatalf("expected no interest after unsubscribe")
	}
}

func TestSession_DifferentExchangeNotInterested(t *testing.T) {
	s := testSession()
	s.subscribe("NSE", []string{"TCS"}, []string{"1m"})
	if s.interested("BSE", "TCS", "1m") {
		t.Fatalf("subscription to NSE:TCS:1m should not match BSE:TCS:1m")
	}
}

func TestSession_HandleControl_SubscribeFallsBackToDefaultTimeframes(t *testing.T) {
	m := NewManager(Config{
		MaxSessions: 2, QueueDepth: 4, HeartbeatSeconds: 30,
		DropThreshold: 3, DefaultExchange: "NSE",
		DefaultTimeframes: []string{"1m", "5m"},
	}, slog.Default())
	s := newSession(nil, m, slog.Default())

	s.handleControl(controlMessage{Action: "subscribe", Symbols: []string{"TCS"}})

	if !s.interested("NSE", "TCS", "1m") || !s.interested("NSE", "TCS", "5m") {
		t.Fatalf("expected subscribe with no timeframes to fall back to DefaultTimeframes, got subs=%v", s.subs)
	}
}
