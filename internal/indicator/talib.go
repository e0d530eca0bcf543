package indicator

import (
	"candlestream/internal/model"

	"github.com/markcheno/go-talib"
)

func computeSMA(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	out := talib.Sma(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period-1))
}

func computeEMA(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	out := talib.Ema(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period-1))
}

func computeWMA(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	out := talib.Wma(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period-1))
}

func computeMACD(s series, params map[string]float64) model.IndicatorOutput {
	fast := intParam(params, "fast", 12)
	slow := intParam(params, "slow", 26)
	signal := intParam(params, "signal", 9)
	macd, sig, hist := talib.Macd(s.close, fast, slow, signal)
	warmup := slow + signal - 1
	return model.IndicatorOutput{Series: map[string][]float64{
		"macd":   sentinelPrefix(macd, warmup),
		"signal": sentinelPrefix(sig, warmup),
		"hist":   sentinelPrefix(hist, warmup),
	}}
}

func computeADX(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	adx := talib.Adx(s.high, s.low, s.close, period)
	plusDI := talib.PlusDI(s.high, s.low, s.close, period)
	minusDI := talib.MinusDI(s.high, s.low, s.close, period)
	warmup := 2 * period
	return model.IndicatorOutput{Series: map[string][]float64{
		"adx":      sentinelPrefix(adx, warmup),
		"plus_di":  sentinelPrefix(plusDI, period),
		"minus_di": sentinelPrefix(minusDI, period),
	}}
}

func computeBBands(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	dev := paramOr(params, "stddev", 2)
	upper, mid, lower := talib.BBands(s.close, period, dev, dev, talib.SMA)
	n := len(s.close)
	width := make([]float64, n)
	percentB := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period-1 {
			width[i] = model.Sentinel
			percentB[i] = model.Sentinel
			continue
		}
		width[i] = (upper[i] - lower[i]) / mid[i]
		if upper[i] != lower[i] {
			percentB[i] = (s.close[i] - lower[i]) / (upper[i] - lower[i])
		}
	}
	return model.IndicatorOutput{Series: map[string][]float64{
		"high":      sentinelPrefix(upper, period-1),
		"mid":       sentinelPrefix(mid, period-1),
		"low":       sentinelPrefix(lower, period-1),
		"width":     width,
		"percent_b": percentB,
	}}
}

func computeRSI(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	out := talib.Rsi(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computeStoch(s series, params map[string]float64) model.IndicatorOutput {
	k := intParam(params, "k", 14)
	d := intParam(params, "d", 3)
	slowK, slowD := talib.Stoch(s.high, s.low, s.close, k, 3, talib.SMA, d, talib.SMA)
	warmup := k + d
	return model.IndicatorOutput{Series: map[string][]float64{
		"k": sentinelPrefix(slowK, warmup),
		"d": sentinelPrefix(slowD, warmup),
	}}
}

func computeWillR(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	out := talib.WillR(s.high, s.low, s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period-1))
}

func computeKAMA(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 10)
	out := talib.Kama(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computeROC(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 12)
	out := talib.Roc(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computePPO(s series, params map[string]float64) model.IndicatorOutput {
	fast := intParam(params, "fast", 12)
	slow := intParam(params, "slow", 26)
	signalPeriod := intParam(params, "signal", 9)
	line := talib.Ppo(s.close, fast, slow, talib.EMA)
	warmup := slow - 1
	line = sentinelPrefix(line, warmup)
	sig := emaSeries(line[warmup:], signalPeriod)
	fullSig := make([]float64, len(line))
	hist := make([]float64, len(line))
	for i := range fullSig {
		if i < warmup {
			fullSig[i] = model.Sentinel
			hist[i] = model.Sentinel
			continue
		}
		fullSig[i] = sig[i-warmup]
		hist[i] = line[i] - fullSig[i]
	}
	return model.IndicatorOutput{Series: map[string][]float64{"line": line, "signal": fullSig, "hist": hist}}
}

func computeAroon(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 25)
	down, up := talib.Aroon(s.high, s.low, period)
	warmup := period
	n := len(s.close)
	indicator := make([]float64, n)
	for i := range indicator {
		if i < warmup {
			indicator[i] = model.Sentinel
			continue
		}
		indicator[i] = up[i] - down[i]
	}
	return model.IndicatorOutput{Series: map[string][]float64{
		"up":        sentinelPrefix(up, warmup),
		"down":      sentinelPrefix(down, warmup),
		"indicator": indicator,
	}}
}

func computeTRIX(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 15)
	out := talib.Trix(s.close, period)
	return scalarSeries("value", sentinelPrefix(out, 3*period))
}

func computeCCI(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 20)
	out := talib.Cci(s.high, s.low, s.close, period)
	return scalarSeries("value", sentinelPrefix(out, period-1))
}

func computeMFI(s series, params map[string]float64) model.IndicatorOutput {
	period := intParam(params, "period", 14)
	out := talib.Mfi(s.high, s.low, s.close, s.volume, period)
	return scalarSeries("value", sentinelPrefix(out, period))
}

func computeOBV(s series, _ map[string]float64) model.IndicatorOutput {
	out := talib.Obv(s.close, s.volume)
	return scalarSeries("value", sentinelPrefix(out, 1))
}

func computeADI(s series, _ map[string]float64) model.IndicatorOutput {
	out := talib.Ad(s.high, s.low, s.close, s.volume)
	return scalarSeries("value", sentinelPrefix(out, 1))
}

func computeUO(s series, params map[string]float64) model.IndicatorOutput {
	p1 := intParam(params, "period1", 7)
	p2 := intParam(params, "period2", 14)
	p3 := intParam(params, "period3", 28)
	out := talib.UltOsc(s.high, s.low, s.close, p1, p2, p3)
	return scalarSeries("value", sentinelPrefix(out, p3))
}

func computePSAR(s series, params map[string]float64) model.IndicatorOutput {
	step := paramOr(params, "step", 0.02)
	maxStep := paramOr(params, "max", 0.2)
	psar := talib.Sar(s.high, s.low, step, maxStep)
	n := len(s.close)
	up := make([]float64, n)
	down := make([]float64, n)
	for i := range psar {
		if i < 1 {
			up[i], down[i] = model.Sentinel, model.Sentinel
			continue
		}
		if psar[i] < s.low[i] {
			up[i] = psar[i]
			down[i] = model.Sentinel
		} else {
			down[i] = psar[i]
			up[i] = model.Sentinel
		}
	}
	return model.IndicatorOutput{Series: map[string][]float64{
		"psar": sentinelPrefix(psar, 1),
		"up":   up,
		"down": down,
	}}
}
