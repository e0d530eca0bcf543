package sr

import (
	"sort"

	talib "github.com/markcheno/go-talib"

	"candlestream/internal/model"
)

// Result is the outcome of one Run: the selected support/resistance levels
// plus the tolerance (price units) and the ATR that the tolerance and the
// prominence threshold were derived from, for callers that want to explain
// the levels.
type Result struct {
	Support    []model.SupportResistanceLevel
	Resistance []model.SupportResistanceLevel
	Tolerance  float64
	ATR        float64
}

const atrPeriod = 14

// Run derives support/resistance levels from window under params. A flat
// series (ATR == 0) has no meaningful price structure to cluster and
// returns empty lists rather than degenerate single-price levels.
func Run(window []model.Candle, params Params) Result {
	n := len(window)
	if n == 0 {
		return Result{}
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range window {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	atr := lastValid(talib.Atr(highs, lows, closes, atrPeriod))
	if atr <= 0 {
		return Result{ATR: atr}
	}

	prominence := params.ProminenceMult * atr
	tol := params.ATRMult * atr

	peakIdx := findPeaks(highs, params.WindowW, prominence)
	troughIdx := findTroughs(lows, params.WindowW, prominence)

	resistancePoints := make([]extremum, len(peakIdx))
	for i, idx := range peakIdx {
		resistancePoints[i] = extremum{
			index: idx, price: highs[idx], volume: window[idx].Volume,
			timestamp: window[idx].BucketStart, kind: model.Resistance,
		}
	}
	supportPoints := make([]extremum, len(troughIdx))
	for i, idx := range troughIdx {
		supportPoints[i] = extremum{
			index: idx, price: lows[idx], volume: window[idx].Volume,
			timestamp: window[idx].BucketStart, kind: model.Support,
		}
	}

	resistance, resStrength := levelsFromClusters(resistancePoints, n, tol, params.HalfLifeBars)
	support, supStrength := levelsFromClusters(supportPoints, n, tol, params.HalfLifeBars)

	maxStrength := maxOf(resStrength, supStrength)
	normalize(resistance, resStrength, maxStrength)
	normalize(support, supStrength, maxStrength)

	return Result{
		Support:    selectTop(support, params.MaxLevels),
		Resistance: selectTop(resistance, params.MaxLevels),
		Tolerance:  tol,
		ATR:        atr,
	}
}

func levelsFromClusters(points []extremum, n int, tol, halfLifeBars float64) ([]model.SupportResistanceLevel, []float64) {
	clusters := cluster(points, tol)
	levels := make([]model.SupportResistanceLevel, len(clusters))
	raw := make([]float64, len(clusters))
	for i, c := range clusters {
		levels[i], raw[i] = levelFromCluster(c, n, halfLifeBars)
	}
	return levels, raw
}

func maxOf(groups ...[]float64) float64 {
	var m float64
	for _, g := range groups {
		for _, v := range g {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// normalize divides each level's raw strength by maxStrength (pooled across
// both kinds in this run) and writes the clamped [0,1] result back into the
// level in place.
func normalize(levels []model.SupportResistanceLevel, raw []float64, maxStrength float64) {
	if maxStrength <= 0 {
		return
	}
	for i := range levels {
		s := raw[i] / maxStrength
		if s > 1 {
			s = 1
		}
		if s < 0 {
			s = 0
		}
		levels[i].Strength = s
	}
}

func selectTop(levels []model.SupportResistanceLevel, maxLevels int) []model.SupportResistanceLevel {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Strength > levels[j].Strength })
	if maxLevels > 0 && len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}
	return levels
}

// lastValid returns the last non-NaN value in a talib output slice, or 0 if
// the series is empty or entirely NaN (too short a window for the period).
func lastValid(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] == values[i] { // false for NaN
			return values[i]
		}
	}
	return 0
}
