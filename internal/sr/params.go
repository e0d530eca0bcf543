// Package sr derives support and resistance levels from a candle window by
// detecting swing extrema, clustering them by price, and weighting each
// cluster by recency and volume.
package sr

// Params controls the peak-detection/clustering procedure. All fields have
// documented defaults; callers override selectively.
type Params struct {
	WindowW        int     // neighborhood radius for swing-extrema detection
	ProminenceMult float64 // prominence threshold, in multiples of ATR
	HalfLifeBars   float64 // recency half-life, in bars
	ATRMult        float64 // clustering tolerance, in multiples of ATR
	MaxLevels      int     // top-N levels kept per kind
}

// DefaultParams returns the package's default S/R parameters.
func DefaultParams() Params {
	return Params{
		WindowW:        3,
		ProminenceMult: 0.5,
		HalfLifeBars:   200,
		ATRMult:        1.0,
		MaxLevels:      10,
	}
}
