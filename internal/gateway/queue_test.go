package gateway

import "testing"

func TestOutboundQueue_PushBelowCapacity(t *testing.T) {
	q := newOutboundQueue(3)
	for i := 0; i < 3; i++ {
		if dropped := q.push(outboundMessage{Type: "candle", Symbol: "TCS", Timeframe: "1m"}); dropped {
			t.Fatalf("push %d: unexpected drop below capacity", i)
		}
	}
	if got := len(q.drain()); got != 3 {
		t.Fatalf("drain: got %d messages, want 3", got)
	}
}

func TestOutboundQueue_DropsOldestOfSameKind(t *testing.T) {
	q := newOutboundQueue(2)
	q.push(outboundMessage{Type: "candle", Symbol: "TCS", Timeframe: "1m", Payload: []byte("1")})
	q.push(outboundMessage{Type: "indicator", Symbol: "TCS", Timeframe: "1m", Payload: []byte("2")})

	dropped := q.push(outboundMessage{Type: "candle", Symbol: "TCS", Timeframe: "1m", Payload: []byte("3")})
	if dropped {
		t.Fatalf("expected the stale candle message to be evicted, not the new one dropped")
	}

	items := q.drain()
	if len(items) != 2 {
		t.Fatalf("expected queue to still hold 2 items, got %d", len(items))
	}
	if string(items[0].Payload) != "2" || string(items[1].Payload) != "3" {
		t.Fatalf("expected [indicator(2), candle(3)], got %+v", items)
	}
}

func TestOutboundQueue_DropsNewWhenNoMatchingKindToEvict(t *testing.T) {
	q := newOutboundQueue(2)
	q.push(outboundMessage{Type: "candle", Symbol: "TCS", Timeframe: "1m"})
	q.push(outboundMessage{Type: "indicator", Symbol: "TCS", Timeframe: "1m"})

	dropped := q.push(outboundMessage{Type: "ack", Symbol: "", Timeframe: ""})
	if !dropped {
		t.Fatalf("expected the new message to be dropped when no same-kind message exists to evict")
	}
	if got := len(q.drain()); got != 2 {
		t.Fatalf("queue contents should be unchanged after a dropped push, got %d items", got)
	}
}

func TestOutboundQueue_DistinctSymbolTimeframeNotEvicted(t *testing.T) {
	q := newOutboundQueue(2)
	q.push(outboundMessage{Type: "candle", Symbol: "TCS", Timeframe: "1m"})
	q.push(outboundMessage{Type: "candle", Symbol: "INFY", Timeframe: "1m"})

	dropped := q.push(outboundMessage{Type: "candle", Symbol: "WIPRO", Timeframe: "1m"})
	if !dropped {
		t.Fatalf("expected drop: no pending message shares (type,symbol,timeframe) with the new one")
	}
}
