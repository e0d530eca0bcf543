package agg

import (
	"math"
	"testing"
	"time"

	"candlestream/internal/model"
)

func key() model.TFKey {
	return model.TFKey{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m"}
}

func TestAggregator_SingleBucket(t *testing.T) {
	a := New(key(), Config{})
	base := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)

	ev := a.OnTick(100.0, 10, base)
	if ev.Partial == nil || ev.Completed != nil {
		t.Fatalf("first tick: expected partial only, got %+v", ev)
	}

	ev = a.OnTick(101.5, 5, base.Add(20*time.Second))
	if ev.Partial == nil {
		t.Fatalf("second tick: expected partial")
	}

	ev = a.OnTick(99.5, 20, base.Add(40*time.Second))
	if ev.Partial == nil {
		t.Fatalf("third tick: expected partial")
	}
	p := ev.Partial
	if p.Open != 100.0 || p.High != 101.5 || p.Low != 99.5 || p.Close != 99.5 {
		t.Errorf("OHLC mismatch: %+v", p)
	}
	if p.TickCount != 3 {
		t.Errorf("tick count = %d, want 3", p.TickCount)
	}
	if p.Volume != 35 {
		t.Errorf("volume = %v, want 35", p.Volume)
	}
	wantVWAP := (100.0*10 + 101.5*5 + 99.5*20) / 35
	if math.Abs(p.VWAP-wantVWAP) > 1e-9 {
		t.Errorf("vwap = %v, want %v", p.VWAP, wantVWAP)
	}

	// Next bucket's tick closes this one.
	ev = a.OnTick(102.0, 1, base.Add(time.Minute))
	if ev.Completed == nil {
		t.Fatalf("expected completed candle on bucket rollover")
	}
	c := ev.Completed
	if c.Open != 100.0 || c.High != 101.5 || c.Low != 99.5 || c.Close != 99.5 || c.TickCount != 3 || c.Volume != 35 {
		t.Errorf("completed candle mismatch: %+v", c)
	}
	if ev.Partial == nil || ev.Partial.Open != 102.0 || ev.Partial.TickCount != 1 {
		t.Errorf("new partial mismatch: %+v", ev.Partial)
	}
}

func TestAggregator_GapNoFill(t *testing.T) {
	a := New(key(), Config{})
	base := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)

	a.OnTick(100.0, 10, base)
	ev := a.OnTick(102.0, 1, base.Add(time.Minute))
	if ev.Completed == nil {
		t.Fatalf("expected completed candle for 09:30 bucket")
	}

	// Gap all the way to 09:45:10 — should close 09:31 bucket, no fills.
	ev = a.OnTick(103.0, 2, time.Date(2026, 7, 31, 9, 45, 10, 0, time.UTC))
	if ev.Completed == nil {
		t.Fatalf("expected completed candle for 09:31 bucket")
	}
	if ev.Completed.Open != 102.0 || ev.Completed.Volume != 1 {
		t.Errorf("09:31 candle mismatch: %+v", ev.Completed)
	}
	if len(ev.Fills) != 0 {
		t.Errorf("expected no synthetic fills by default, got %d", len(ev.Fills))
	}
	if !ev.Partial.BucketStart.Equal(time.Date(2026, 7, 31, 9, 45, 0, 0, time.UTC)) {
		t.Errorf("new partial bucket = %v, want 09:45:00", ev.Partial.BucketStart)
	}
}

func TestAggregator_GapWithFill(t *testing.T) {
	a := New(key(), Config{FillGaps: true})
	base := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)

	a.OnTick(100.0, 10, base)
	ev := a.OnTick(102.0, 1, base.Add(3*time.Minute))
	if ev.Completed == nil {
		t.Fatalf("expected completed candle")
	}
	if len(ev.Fills) != 2 {
		t.Fatalf("expected 2 synthetic fills (09:31, 09:32), got %d", len(ev.Fills))
	}
	for _, f := range ev.Fills {
		if f.Open != 100.0 || f.Close != 100.0 || f.Volume != 0 || f.TickCount != 0 {
			t.Errorf("synthetic fill mismatch: %+v", f)
		}
	}
}

func TestAggregator_LateTickDropped(t *testing.T) {
	a := New(key(), Config{})
	base := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)

	a.OnTick(100.0, 10, base)
	a.OnTick(102.0, 1, base.Add(time.Minute)) // closes 09:30, opens 09:31

	ev := a.OnTick(98.0, 100, base.Add(55*time.Second))
	if !ev.Dropped || ev.Completed != nil || ev.Partial != nil {
		t.Fatalf("expected late tick to be silently dropped, got %+v", ev)
	}
	if a.LateDropped() != 1 {
		t.Errorf("late_dropped = %d, want 1", a.LateDropped())
	}
}

func TestAggregator_ZeroSizeTick(t *testing.T) {
	a := New(key(), Config{})
	base := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)

	a.OnTick(100.0, 10, base)
	ev := a.OnTick(105.0, 0, base.Add(5*time.Second))
	p := ev.Partial
	if p.High != 105.0 || p.Close != 105.0 {
		t.Errorf("zero-size tick should still move H/L/close: %+v", p)
	}
	if p.Volume != 10 {
		t.Errorf("zero-size tick should not change volume: %v", p.Volume)
	}
	if math.Abs(p.VWAP-100.0) > 1e-9 {
		t.Errorf("zero-size tick should not change vwap: %v", p.VWAP)
	}
	if p.TickCount != 2 {
		t.Errorf("tick count should still increment: %d", p.TickCount)
	}
}

func TestAggregator_FlushOnShutdown(t *testing.T) {
	a := New(key(), Config{})
	if a.Flush() != nil {
		t.Errorf("flush with no open bucket should return nil")
	}
	a.OnTick(100.0, 1, time.Now().UTC())
	c := a.Flush()
	if c == nil {
		t.Fatalf("expected a final candle on flush")
	}
	if a.Flush() != nil {
		t.Errorf("second flush should return nil")
	}
}
