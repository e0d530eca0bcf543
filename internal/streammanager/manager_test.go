package streammanager

import (
	"sync"
	"testing"
	"time"

	"candlestream/internal/agg"
	"candlestream/internal/model"
)

type recordingSink struct {
	mu     sync.Mutex
	events []agg.Events
}

func (r *recordingSink) HandleEvents(key model.TFKey, ev agg.Events) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestManager_SubscribeAndProcessTick(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{InboundBuffer: 8}, sink)

	m.Subscribe("sess-1", "RELIANCE", "NSE", []string{"1m", "5m"})

	tick := model.Tick{Symbol: "RELIANCE", Exchange: "NSE", Price: 100, Size: 10, TS: time.Now().UTC()}
	m.ProcessTick(tick)

	deadline := time.After(time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 events (one per subscribed timeframe), got %d", sink.count())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestManager_UnrelatedSymbolNotDispatched(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{InboundBuffer: 8}, sink)
	m.Subscribe("sess-1", "RELIANCE", "NSE", []string{"1m"})

	m.ProcessTick(model.Tick{Symbol: "TCS", Exchange: "NSE", Price: 1, Size: 1, TS: time.Now().UTC()})
	time.Sleep(20 * time.Millisecond)
	if sink.count() != 0 {
		t.Errorf("expected no events for unsubscribed symbol, got %d", sink.count())
	}
}

func TestManager_UnsubscribeTearsDownAfterGrace(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{InboundBuffer: 8, GracePeriod: 10 * time.Millisecond}, sink)
	m.Subscribe("sess-1", "RELIANCE", "NSE", []string{"1m"})
	m.Unsubscribe("sess-1", "RELIANCE", "NSE", []string{"1m"})

	time.Sleep(50 * time.Millisecond)

	m.mu.RLock()
	_, stillThere := m.workers[model.TFKey{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m"}]
	m.mu.RUnlock()
	if stillThere {
		t.Errorf("worker should be torn down after grace period")
	}
}

func TestManager_ResubscribeCancelsTeardown(t *testing.T) {
	sink := &recordingSink{}
	m := New(Config{InboundBuffer: 8, GracePeriod: 30 * time.Millisecond}, sink)
	m.Subscribe("sess-1", "RELIANCE", "NSE", []string{"1m"})
	m.Unsubscribe("sess-1", "RELIANCE", "NSE", []string{"1m"})
	m.Subscribe("sess-2", "RELIANCE", "NSE", []string{"1m"})

	time.Sleep(60 * time.Millisecond)

	m.mu.RLock()
	_, stillThere := m.workers[model.TFKey{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m"}]
	m.mu.RUnlock()
	if !stillThere {
		t.Errorf("resubscribe before grace period elapses should cancel teardown")
	}
}
