package sr

import "candlestream/internal/model"

// PivotMethod selects a pivot-point formula variant.
type PivotMethod string

const (
	Classic    PivotMethod = "classic"
	Fibonacci  PivotMethod = "fibonacci"
	Woodie     PivotMethod = "woodie"
)

// Pivots computes a PivotSet from one prior period's OHLC under the given
// method. This is independent of the clustering procedure: it's a
// deterministic function of a single bar, not the window history.
func Pivots(method PivotMethod, high, low, close float64) model.PivotSet {
	switch method {
	case Fibonacci:
		return fibonacciPivots(high, low, close)
	case Woodie:
		return woodiePivots(high, low, close)
	default:
		return classicPivots(high, low, close)
	}
}

func classicPivots(high, low, close float64) model.PivotSet {
	pp := (high + low + close) / 3
	return model.PivotSet{
		PP: pp,
		R1: 2*pp - low,
		S1: 2*pp - high,
		R2: pp + (high - low),
		S2: pp - (high - low),
		R3: high + 2*(pp-low),
		S3: low - 2*(high-pp),
	}
}

func fibonacciPivots(high, low, close float64) model.PivotSet {
	pp := (high + low + close) / 3
	rng := high - low
	return model.PivotSet{
		PP: pp,
		R1: pp + 0.382*rng,
		S1: pp - 0.382*rng,
		R2: pp + 0.618*rng,
		S2: pp - 0.618*rng,
		R3: pp + 1.0*rng,
		S3: pp - 1.0*rng,
	}
}

func woodiePivots(high, low, close float64) model.PivotSet {
	pp := (high + low + 2*close) / 4
	return model.PivotSet{
		PP: pp,
		R1: 2*pp - low,
		S1: 2*pp - high,
		R2: pp + (high - low),
		S2: pp - (high - low),
		R3: high + 2*(pp-low),
		S3: low - 2*(high-pp),
	}
}
