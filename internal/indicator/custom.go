// Hand-rolled indicators: the ones in the catalog with no go-talib
// equivalent (Keltner, Donchian, Ulcer, StochRSI's triple output, TSI, AO,
// PVO, Ichimoku, STC, Vortex, Mass Index, DPO, KST, CMF, Force Index, EOM,
// VPT, NVI, VWAP, and the plain/log/cumulative return family). Each builds
// on go-talib primitives (Atr, Rsi, Ema) where the underlying math is
// already there, and only the indicator-specific assembly is local.
package indicator

import (
	"math"

	"candlestream/internal/model"

	"github.com/markcheno/go-talib"
)

func computeKeltner(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	mult := paramOr(params, "atr_mult", 2)
	mid := talib.Ema(s.close, period)
	atr := talib.Atr(s.high, s.low, s.close, period)
	n := len(s.close)
	high := make([]float64, n)
	low := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			high[i], low[i] = model.Sentinel, model.Sentinel
			continue
		}
		high[i] = mid[i] + mult*atr[i]
		low[i] = mid[i] - mult*atr[i]
	}
	return model.IndicatorOutput{Series: map[string][]float64{
		"high": high,
		"mid":  sentinelPrefix(mid, period-1),
		"low":  low,
	}}
}

func computeDonchian(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	n := len(s.close)
	high := make([]float64, n)
	low := make([]float64, n)
	mid := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			high[i], low[i], mid[i] = model.Sentinel, model.Sentinel, model.Sentinel
			continue
		}
		hi, lo := s.high[i], s.low[i]
		for j := i - period + 1; j < i; j++ {
			if s.high[j] > hi {
				hi = s.high[j]
			}
			if s.low[j] < lo {
				lo = s.low[j]
			}
		}
		high[i], low[i] = hi, lo
		mid[i] = (hi + lo) / 2
	}
	return model.IndicatorOutput{Series: map[string][]float64{"high": high, "mid": mid, "low": low}}
}

func computeUlcer(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	n := len(s.close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = model.Sentinel
			continue
		}
		hi := s.close[i-period+1]
		var sumSq float64
		for j := i - period + 1; j <= i; j++ {
			if s.close[j] > hi {
				hi = s.close[j]
			}
		}
		for j := i - period + 1; j <= i; j++ {
			drawdown := (s.close[j] - hi) / hi * 100
			sumSq += drawdown * drawdown
		}
		out[i] = math.Sqrt(sumSq / float64(period))
	}
	return scalarSeries("value", out)
}

func computeStochRSI(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	kPeriod := intParam(params, "k", 3)
	dPeriod := intParam(params, "d", 3)
	rsi := talib.Rsi(s.close, period)
	n := len(rsi)
	stochRSI := make([]float64, n)
	warmup := 2 * period
	for i := 0; i < n; i++ {
		if i < warmup {
			stochRSI[i] = model.Sentinel
			continue
		}
		lo, hi := rsi[i-period+1], rsi[i-period+1]
		for j := i - period + 1; j <= i; j++ {
			if rsi[j] < lo {
				lo = rsi[j]
			}
			if rsi[j] > hi {
				hi = rsi[j]
			}
		}
		if hi == lo {
			stochRSI[i] = 0
			continue
		}
		stochRSI[i] = (rsi[i] - lo) / (hi - lo)
	}
	k := smaSeries(stochRSI[warmup:], kPeriod)
	fullK := make([]float64, n)
	for i := range fullK {
		if i < warmup+kPeriod-1 {
			fullK[i] = model.Sentinel
			continue
		}
		fullK[i] = k[i-warmup]
	}
	d := smaSeries(fullK[warmup+kPeriod-1:], dPeriod)
	fullD := make([]float64, n)
	base := warmup + kPeriod - 1
	for i := range fullD {
		if i < base+dPeriod-1 {
			fullD[i] = model.Sentinel
			continue
		}
		fullD[i] = d[i-base]
	}
	return model.IndicatorOutput{Series: map[string][]float64{"stoch_rsi": stochRSI, "k": fullK, "d": fullD}}
}

func computeTSI(s series, params map[string]float64) model.IndicatorOutput {
	long := intParam(params, "long", 25)
	short := intParam(params, "short", 13)
	n := len(s.close)
	mom := make([]float64, n)
	absMom := make([]float64, n)
	for i := 1; i < n; i++ {
		d := s.close[i] - s.close[i-1]
		mom[i] = d
		absMom[i] = abs(d)
	}
	emaMom := emaSeries(emaSeries(mom, long), short)
	emaAbsMom := emaSeries(emaSeries(absMom, long), short)
	out := make([]float64, n)
	warmup := long + short
	for i := 0; i < n; i++ {
		if i < warmup {
			out[i] = model.Sentinel
			continue
		}
		if emaAbsMom[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = 100 * emaMom[i] / emaAbsMom[i]
	}
	return scalarSeries("value", out)
}

func computeAO(s series, _ map[string]float64) model.IndicatorOutput {
	median := medianPrice(s.high, s.low)
	fast := smaSeries(median, 5)
	slow := smaSeries(median, 34)
	n := len(s.close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < 33 {
			out[i] = model.Sentinel
			continue
		}
		out[i] = fast[i] - slow[i]
	}
	return scalarSeries("value", out)
}

func computePVO(s series, params map[string]float64) model.IndicatorOutput {
	fast := intParam(params, "fast", 12)
	slow := intParam(params, "slow", 26)
	signalPeriod := intParam(params, "signal", 9)
	fastEma := emaSeries(s.volume, fast)
	slowEma := emaSeries(s.volume, slow)
	n := len(s.close)
	line := make([]float64, n)
	warmup := slow - 1
	for i := 0; i < n; i++ {
		if i < warmup || slowEma[i] == 0 {
			line[i] = model.Sentinel
			continue
		}
		line[i] = (fastEma[i] - slowEma[i]) / slowEma[i] * 100
	}
	sig := emaSeries(line[warmup:], signalPeriod)
	signal := make([]float64, n)
	hist := make([]float64, n)
	for i := range signal {
		if i < warmup {
			signal[i] = model.Sentinel
			hist[i] = model.Sentinel
			continue
		}
		signal[i] = sig[i-warmup]
		hist[i] = line[i] - signal[i]
	}
	return model.IndicatorOutput{Series: map[string][]float64{"line": line, "signal": signal, "hist": hist}}
}

func computeIchimoku(s series, params map[string]float64) model.IndicatorOutput {
	conv := intParam(params, "conversion", 9)
	base := intParam(params, "base", 26)
	spanB := intParam(params, "span_b", 52)
	n := len(s.close)
	conversion := make([]float64, n)
	baseLine := make([]float64, n)
	spanA := make([]float64, n)
	spanBLine := make([]float64, n)
	midOf := func(period, i int) float64 {
		hi, lo := s.high[i-period+1], s.low[i-period+1]
		for j := i - period + 1; j <= i; j++ {
			if s.high[j] > hi {
				hi = s.high[j]
			}
			if s.low[j] < lo {
				lo = s.low[j]
			}
		}
		return (hi + lo) / 2
	}
	for i := 0; i < n; i++ {
		if i < conv-1 {
			conversion[i] = model.Sentinel
		} else {
			conversion[i] = midOf(conv, i)
		}
		if i < base-1 {
			baseLine[i] = model.Sentinel
		} else {
			baseLine[i] = midOf(base, i)
		}
		if i < base-1 || i < conv-1 {
			spanA[i] = model.Sentinel
		} else {
			spanA[i] = (conversion[i] + baseLine[i]) / 2
		}
		if i < spanB-1 {
			spanBLine[i] = model.Sentinel
		} else {
			spanBLine[i] = midOf(spanB, i)
		}
	}
	return model.IndicatorOutput{Series: map[string][]float64{
		"a": spanA, "b": spanBLine, "base": baseLine, "conversion": conversion,
	}}
}

func computeSTC(s series, params map[string]float64) model.IndicatorOutput {
	fast := intParam(params, "fast", 23)
	slow := intParam(params, "slow", 50)
	cycle := intParam(params, "cycle", 10)
	macd := make([]float64, len(s.close))
	fastEma := emaSeries(s.close, fast)
	slowEma := emaSeries(s.close, slow)
	for i := range macd {
		macd[i] = fastEma[i] - slowEma[i]
	}
	warmup := slow - 1
	n := len(s.close)
	stoch1 := stochastic(macd, cycle, warmup)
	stoch2 := stochastic(stoch1, cycle, warmup+cycle-1)
	out := make([]float64, n)
	full := warmup + 2*(cycle-1)
	for i := 0; i < n; i++ {
		if i < full {
			out[i] = model.Sentinel
			continue
		}
		out[i] = stoch2[i]
	}
	return scalarSeries("value", out)
}

// stochastic computes a %K-style stochastic of values over period, treating
// entries before validFrom as not-yet-valid (copied through as zero until
// the rolling window is fully inside the valid range).
func stochastic(values []float64, period, validFrom int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - period + 1
		if start < validFrom {
			continue
		}
		lo, hi := values[start], values[start]
		for j := start; j <= i; j++ {
			if values[j] < lo {
				lo = values[j]
			}
			if values[j] > hi {
				hi = values[j]
			}
		}
		if hi == lo {
			out[i] = 0
			continue
		}
		out[i] = (values[i] - lo) / (hi - lo) * 100
	}
	return out
}

func computeVortex(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	tr := trueRange(s.high, s.low, s.close)
	n := len(s.close)
	vmPlus := make([]float64, n)
	vmMinus := make([]float64, n)
	for i := 1; i < n; i++ {
		vmPlus[i] = abs(s.high[i] - s.low[i-1])
		vmMinus[i] = abs(s.low[i] - s.high[i-1])
	}
	plus := make([]float64, n)
	minus := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			plus[i], minus[i] = model.Sentinel, model.Sentinel
			continue
		}
		var sumTR, sumVP, sumVM float64
		for j := i - period + 1; j <= i; j++ {
			sumTR += tr[j]
			sumVP += vmPlus[j]
			sumVM += vmMinus[j]
		}
		if sumTR == 0 {
			plus[i], minus[i] = 0, 0
			continue
		}
		plus[i] = sumVP / sumTR
		minus[i] = sumVM / sumTR
	}
	return model.IndicatorOutput{Series: map[string][]float64{"plus": plus, "minus": minus}}
}

func computeMassIndex(s series, params map[string]float64) model.IndicatorOutput {
	emaPeriod := intParam(params, "ema_period", 9)
	sumPeriod := intParam(params, "sum_period", 25)
	n := len(s.close)
	hl := make([]float64, n)
	for i := range hl {
		hl[i] = s.high[i] - s.low[i]
	}
	ema1 := emaSeries(hl, emaPeriod)
	ema2 := emaSeries(ema1, emaPeriod)
	ratio := make([]float64, n)
	for i := range ratio {
		if ema2[i] == 0 {
			continue
		}
		ratio[i] = ema1[i] / ema2[i]
	}
	out := make([]float64, n)
	warmup := sumPeriod + emaPeriod
	for i := 0; i < n; i++ {
		if i < warmup {
			out[i] = model.Sentinel
			continue
		}
		var sum float64
		for j := i - sumPeriod + 1; j <= i; j++ {
			sum += ratio[j]
		}
		out[i] = sum
	}
	return scalarSeries("value", out)
}

func computeDPO(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	shift := period/2 + 1
	sma := smaSeries(s.close, period)
	n := len(s.close)
	out := make([]float64, n)
	warmup := period + shift
	for i := 0; i < n; i++ {
		ref := i - shift
		if i < warmup || ref < period-1 {
			out[i] = model.Sentinel
			continue
		}
		out[i] = s.close[i] - sma[ref]
	}
	return scalarSeries("value", out)
}

func computeKST(s series, params map[string]float64) model.IndicatorOutput {
	roc1 := intParam(params, "roc1", 10)
	roc2 := intParam(params, "roc2", 15)
	roc3 := intParam(params, "roc3", 20)
	roc4 := intParam(params, "roc4", 30)
	signalPeriod := intParam(params, "signal", 9)
	sma1 := smaSeries(rocSeries(s.close, roc1), 10)
	sma2 := smaSeries(rocSeries(s.close, roc2), 10)
	sma3 := smaSeries(rocSeries(s.close, roc3), 10)
	sma4 := smaSeries(rocSeries(s.close, roc4), 15)
	n := len(s.close)
	kst := make([]float64, n)
	warmup := roc4 + 15
	for i := 0; i < n; i++ {
		if i < warmup {
			kst[i] = model.Sentinel
			continue
		}
		kst[i] = sma1[i]*1 + sma2[i]*2 + sma3[i]*3 + sma4[i]*4
	}
	sig := smaSeries(kst[warmup:], signalPeriod)
	signal := make([]float64, n)
	for i := range signal {
		if i < warmup+signalPeriod-1 {
			signal[i] = model.Sentinel
			continue
		}
		signal[i] = sig[i-warmup]
	}
	return model.IndicatorOutput{Series: map[string][]float64{"kst": kst, "signal": signal}}
}

func computeCMF(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	n := len(s.close)
	mfv := make([]float64, n)
	for i := range mfv {
		rng := s.high[i] - s.low[i]
		if rng == 0 {
			continue
		}
		mfm := ((s.close[i] - s.low[i]) - (s.high[i] - s.close[i])) / rng
		mfv[i] = mfm * s.volume[i]
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = model.Sentinel
			continue
		}
		var sumMFV, sumVol float64
		for j := i - period + 1; j <= i; j++ {
			sumMFV += mfv[j]
			sumVol += s.volume[j]
		}
		if sumVol == 0 {
			out[i] = 0
			continue
		}
		out[i] = sumMFV / sumVol
	}
	return scalarSeries("value", out)
}

func computeForceIndex(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 13)
	n := len(s.close)
	raw := make([]float64, n)
	for i := 1; i < n; i++ {
		raw[i] = (s.close[i] - s.close[i-1]) * s.volume[i]
	}
	out := emaSeries(raw, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computeEOM(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	n := len(s.close)
	raw := make([]float64, n)
	for i := 1; i < n; i++ {
		midMove := (s.high[i]+s.low[i])/2 - (s.high[i-1]+s.low[i-1])/2
		boxRatio := 0.0
		if s.volume[i] != 0 && (s.high[i]-s.low[i]) != 0 {
			boxRatio = (s.volume[i] / 100000000) / (s.high[i] - s.low[i])
		}
		if boxRatio != 0 {
			raw[i] = midMove / boxRatio
		}
	}
	out := smaSeries(raw, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computeVPT(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		if s.close[i-1] == 0 {
			out[i] = out[i-1]
			continue
		}
		out[i] = out[i-1] + s.volume[i]*(s.close[i]-s.close[i-1])/s.close[i-1]
	}
	out[0] = model.Sentinel
	return scalarSeries("value", out)
}

func computeNVI(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	out[0] = 1000
	for i := 1; i < n; i++ {
		out[i] = out[i-1]
		if s.volume[i] < s.volume[i-1] && s.close[i-1] != 0 {
			out[i] = out[i-1] * (1 + (s.close[i]-s.close[i-1])/s.close[i-1])
		}
	}
	return scalarSeries("value", out)
}

func computeVWAP(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	var cumPV, cumVol float64
	for i := 0; i < n; i++ {
		typical := (s.high[i] + s.low[i] + s.close[i]) / 3
		cumPV += typical * s.volume[i]
		cumVol += s.volume[i]
		if cumVol == 0 {
			out[i] = typical
			continue
		}
		out[i] = cumPV / cumVol
	}
	return scalarSeries("value", out)
}

func computeReturn(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	out[0] = model.Sentinel
	for i := 1; i < n; i++ {
		if s.close[i-1] == 0 {
			out[i] = model.Sentinel
			continue
		}
		out[i] = (s.close[i] - s.close[i-1]) / s.close[i-1]
	}
	return scalarSeries("value", out)
}

func computeLogReturn(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	out[0] = model.Sentinel
	for i := 1; i < n; i++ {
		if s.close[i-1] <= 0 || s.close[i] <= 0 {
			out[i] = model.Sentinel
			continue
		}
		out[i] = math.Log(s.close[i] / s.close[i-1])
	}
	return scalarSeries("value", out)
}

func computeCumulativeReturn(s series, _ map[string]float64) model.IndicatorOutput {
	n := len(s.close)
	out := make([]float64, n)
	out[0] = 0
	if n == 0 || s.close[0] == 0 {
		return scalarSeries("value", out)
	}
	for i := 0; i < n; i++ {
		out[i] = (s.close[i] - s.close[0]) / s.close[0]
	}
	return scalarSeries("value", out)
}
