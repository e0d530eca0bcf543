package indicator

import "candlestream/internal/model"

// series holds the OHLCV columns extracted from a candle window, aligned
// 1:1 with it. Every indicator function operates on these plain slices so
// the go-talib calls underneath see exactly the shape they expect.
type series struct {
	open, high, low, close, volume []float64
}

func extract(window []model.Candle) series {
	s := series{
		open:   make([]float64, len(window)),
		high:   make([]float64, len(window)),
		low:    make([]float64, len(window)),
		close:  make([]float64, len(window)),
		volume: make([]float64, len(window)),
	}
	for i, c := range window {
		s.open[i] = c.Open
		s.high[i] = c.High
		s.low[i] = c.Low
		s.close[i] = c.Close
		s.volume[i] = c.Volume
	}
	return s
}

// sentinelPrefix overwrites the first n entries of out with the unknown
// sentinel, guaranteeing the engine's "no non-sentinel value before
// min_candles" contract regardless of how the underlying math library pads
// its own warm-up period.
func sentinelPrefix(out []float64, n int) []float64 {
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = model.Sentinel
	}
	return out
}

// scalarSeries wraps a single named series as an IndicatorOutput.
func scalarSeries(name string, values []float64) model.IndicatorOutput {
	return model.IndicatorOutput{Series: map[string][]float64{name: values}}
}

func errOutput(err error) model.IndicatorOutput {
	return model.IndicatorOutput{Err: err.Error()}
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return model.Sentinel
	}
	return values[len(values)-1]
}
