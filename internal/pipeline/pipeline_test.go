package pipeline

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"candlestream/internal/agg"
	"candlestream/internal/model"
)

type fakeBroadcaster struct {
	candleCalls     int
	indicatorCalls  int
	lastIndicators  map[string]model.IndicatorOutput
}

func (f *fakeBroadcaster) BroadcastCandle(key model.TFKey, ev agg.Events) {
	f.candleCalls++
}

func (f *fakeBroadcaster) BroadcastIndicators(key model.TFKey, out map[string]model.IndicatorOutput) {
	f.indicatorCalls++
	f.lastIndicators = out
}

func testKey() model.TFKey {
	return model.TFKey{Symbol: "RELIANCE", Exchange: "NSE", Timeframe: "1m"}
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleEvents_AlwaysBroadcastsCandle(t *testing.T) {
	fb := &fakeBroadcaster{}
	s := New(fb, nil, 50, testLog())

	s.HandleEvents(testKey(), agg.Events{Partial: &model.PartialCandle{}})
	if fb.candleCalls != 1 {
		t.Fatalf("candleCalls = %d, want 1", fb.candleCalls)
	}
	if fb.indicatorCalls != 0 {
		t.Fatalf("indicatorCalls = %d, want 0 with no configured indicators", fb.indicatorCalls)
	}
}

func TestHandleEvents_ComputesIndicatorsOnCompletion(t *testing.T) {
	fb := &fakeBroadcaster{}
	s := New(fb, []string{"sma"}, 50, testLog())
	key := testKey()

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		c := model.Candle{
			Symbol: key.Symbol, Exchange: key.Exchange, Timeframe: key.Timeframe,
			BucketStart: base.Add(time.Duration(i) * time.Minute),
			Open: 100, High: 101, Low: 99, Close: 100 + float64(i), Volume: 1,
		}
		s.HandleEvents(key, agg.Events{Completed: &c})
	}

	if fb.candleCalls != 25 {
		t.Fatalf("candleCalls = %d, want 25", fb.candleCalls)
	}
	if fb.indicatorCalls != 25 {
		t.Fatalf("indicatorCalls = %d, want 25", fb.indicatorCalls)
	}
	if _, ok := fb.lastIndicators["sma"]; !ok {
		t.Fatalf("expected sma in last broadcast indicators, got %v", fb.lastIndicators)
	}
}

func TestHandleEvents_DroppedTickSkipsWindowUpdate(t *testing.T) {
	fb := &fakeBroadcaster{}
	s := New(fb, []string{"sma"}, 50, testLog())
	key := testKey()

	s.HandleEvents(key, agg.Events{Dropped: true})
	if fb.candleCalls != 1 {
		t.Fatalf("candleCalls = %d, want 1", fb.candleCalls)
	}
	if fb.indicatorCalls != 0 {
		t.Fatalf("indicatorCalls = %d, want 0 for a dropped tick", fb.indicatorCalls)
	}
}

func TestWindow_BoundedByMaxWindow(t *testing.T) {
	fb := &fakeBroadcaster{}
	s := New(fb, nil, 10, testLog())
	key := testKey()

	base := time.Now().UTC()
	for i := 0; i < 30; i++ {
		c := model.Candle{Symbol: key.Symbol, Exchange: key.Exchange, Timeframe: key.Timeframe, BucketStart: base.Add(time.Duration(i) * time.Minute)}
		s.HandleEvents(key, agg.Events{Completed: &c})
	}

	w := s.windowFor(key)
	if len(w.candles) != 10 {
		t.Fatalf("len(window.candles) = %d, want 10", len(w.candles))
	}
	if w.candles[len(w.candles)-1].BucketStart != base.Add(29*time.Minute) {
		t.Fatalf("window did not retain the most recent candle")
	}
}
