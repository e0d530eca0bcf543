package sr

import (
	"math"
	"testing"
	"time"

	"candlestream/internal/model"
)

func makeCandle(base time.Time, i int, high, low, close, volume float64) model.Candle {
	return model.Candle{
		Symbol: "TEST", Exchange: "NSE", Timeframe: "1d",
		BucketStart: base.AddDate(0, 0, i),
		High:        high, Low: low, Close: close, Volume: volume,
	}
}

func TestRun_FlatSeriesReturnsEmptyLevels(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := make([]model.Candle, 40)
	for i := range window {
		window[i] = makeCandle(base, i, 100, 100, 100, 10)
	}

	res := Run(window, DefaultParams())
	if len(res.Support) != 0 || len(res.Resistance) != 0 {
		t.Fatalf("flat series: expected no levels, got %d support / %d resistance", len(res.Support), len(res.Resistance))
	}
	if res.ATR != 0 {
		t.Errorf("flat series: expected ATR 0, got %v", res.ATR)
	}
}

func TestRun_DetectsObviousSwingHighAndLow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 60
	window := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		high, low, close := 100.0, 98.0, 99.0
		switch i {
		case 20:
			high, low, close = 130, 128, 129 // sharp swing high
		case 40:
			high, low, close = 70, 68, 69 // sharp swing low
		}
		window[i] = makeCandle(base, i, high, low, close, 100)
	}

	res := Run(window, DefaultParams())
	if len(res.Resistance) == 0 {
		t.Fatalf("expected at least one resistance level near the swing high")
	}
	if len(res.Support) == 0 {
		t.Fatalf("expected at least one support level near the swing low")
	}

	foundRes := false
	for _, lvl := range res.Resistance {
		if math.Abs(lvl.Price-130) < 10 {
			foundRes = true
		}
	}
	if !foundRes {
		t.Errorf("no resistance level near the injected swing high; got %+v", res.Resistance)
	}

	foundSup := false
	for _, lvl := range res.Support {
		if math.Abs(lvl.Price-68) < 10 {
			foundSup = true
		}
	}
	if !foundSup {
		t.Errorf("no support level near the injected swing low; got %+v", res.Support)
	}
}

func TestRun_LevelsAreOrderedByStrengthDescending(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 80
	window := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		high, low, close := 100.0, 98.0, 99.0
		if i%10 == 5 {
			high, low, close = 120, 118, 119
		}
		window[i] = makeCandle(base, i, high, low, close, 100)
	}

	res := Run(window, DefaultParams())
	for i := 1; i < len(res.Resistance); i++ {
		if res.Resistance[i].Strength > res.Resistance[i-1].Strength {
			t.Fatalf("resistance levels not sorted by strength descending at index %d", i)
		}
	}
}

func TestRun_RespectsMaxLevels(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 200
	window := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		high := 100.0 + float64(i%20)
		low := high - 2
		close := high - 1
		window[i] = makeCandle(base, i, high, low, close, 50)
	}

	params := DefaultParams()
	params.MaxLevels = 2
	res := Run(window, params)
	if len(res.Resistance) > 2 {
		t.Errorf("expected at most 2 resistance levels, got %d", len(res.Resistance))
	}
	if len(res.Support) > 2 {
		t.Errorf("expected at most 2 support levels, got %d", len(res.Support))
	}
}

func TestPivots_Classic(t *testing.T) {
	got := Pivots(Classic, 110, 90, 100)
	wantPP := 100.0
	if math.Abs(got.PP-wantPP) > 1e-9 {
		t.Errorf("classic PP = %v, want %v", got.PP, wantPP)
	}
	if math.Abs(got.R1-(2*wantPP-90)) > 1e-9 {
		t.Errorf("classic R1 = %v", got.R1)
	}
	if math.Abs(got.S1-(2*wantPP-110)) > 1e-9 {
		t.Errorf("classic S1 = %v", got.S1)
	}
}

func TestPivots_WoodieWeightsClose(t *testing.T) {
	got := Pivots(Woodie, 110, 90, 108)
	want := (110.0 + 90.0 + 2*108.0) / 4
	if math.Abs(got.PP-want) > 1e-9 {
		t.Errorf("woodie PP = %v, want %v", got.PP, want)
	}
}

func TestNearest_OrdersByDistanceThenStrength(t *testing.T) {
	levels := []model.SupportResistanceLevel{
		{Price: 105, Kind: model.Resistance, Strength: 0.5},
		{Price: 95, Kind: model.Support, Strength: 0.9},
		{Price: 110, Kind: model.Resistance, Strength: 0.2},
	}
	out := Nearest(levels, 100, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 nearest levels, got %d", len(out))
	}
	if math.Abs(out[0].Distance+5) > 1e-9 || out[0].Strength != 0.9 {
		t.Errorf("expected the stronger of the two equidistant levels (95, strength 0.9) first, got distance %v strength %v", out[0].Distance, out[0].Strength)
	}
}

func TestFindPeaks_DetectsSingleSpike(t *testing.T) {
	values := []float64{1, 1, 1, 5, 1, 1, 1}
	idx := findPeaks(values, 2, 1)
	if len(idx) != 1 || idx[0] != 3 {
		t.Fatalf("expected single peak at index 3, got %v", idx)
	}
}

func TestFindPeaks_PlateauCollapsesToOnePeak(t *testing.T) {
	values := []float64{1, 5, 5, 5, 1}
	idx := findPeaks(values, 1, 1)
	if len(idx) != 1 {
		t.Fatalf("expected plateau to collapse to a single peak, got %v", idx)
	}
}
