// Package indicator computes technical indicators over a candle window.
// Every indicator is a pure function of (window, params): no cross-call
// state, so a caller extending the window by one candle and recomputing
// gets values numerically indistinguishable from a fresh calculation.
package indicator

import (
	"fmt"

	"candlestream/internal/apierr"
	"candlestream/internal/model"
)

type computeFunc func(s series, params map[string]float64) model.IndicatorOutput

var dispatch = map[string]computeFunc{
	"sma":               computeSMA,
	"ema":               computeEMA,
	"wma":               computeWMA,
	"macd":              computeMACD,
	"adx":               computeADX,
	"bbands":            computeBBands,
	"keltner":           computeKeltner,
	"donchian":          computeDonchian,
	"ulcer":             computeUlcer,
	"rsi":               computeRSI,
	"stoch_rsi":         computeStochRSI,
	"tsi":               computeTSI,
	"uo":                computeUO,
	"stoch":             computeStoch,
	"willr":             computeWillR,
	"ao":                computeAO,
	"kama":              computeKAMA,
	"roc":               computeROC,
	"ppo":               computePPO,
	"pvo":               computePVO,
	"ichimoku":          computeIchimoku,
	"psar":              computePSAR,
	"stc":               computeSTC,
	"aroon":             computeAroon,
	"vortex":            computeVortex,
	"trix":              computeTRIX,
	"mass_index":        computeMassIndex,
	"cci":               computeCCI,
	"dpo":               computeDPO,
	"kst":               computeKST,
	"mfi":               computeMFI,
	"adi":               computeADI,
	"obv":               computeOBV,
	"cmf":               computeCMF,
	"force_index":       computeForceIndex,
	"eom":               computeEOM,
	"vpt":               computeVPT,
	"nvi":               computeNVI,
	"vwap":              computeVWAP,
	"return":            computeReturn,
	"log_return":        computeLogReturn,
	"cumulative_return": computeCumulativeReturn,
}

// Compute evaluates every name in requested over window, using the given
// per-indicator parameter overrides. Unknown indicator names are rejected
// outright (they abort the whole call: a bad request never does
// partial work). Once past that check, a single indicator's failure (a
// window shorter than it can handle, an internal panic) is captured in its
// own IndicatorOutput.Err and never prevents the others in requested from
// returning a result.
func Compute(window []model.Candle, requested []string, params map[string]map[string]float64) (map[string]model.IndicatorOutput, error) {
	for _, name := range requested {
		if _, ok := catalogByName[name]; !ok {
			return nil, apierr.UnknownIndicatorErr(name)
		}
	}

	s := extract(window)
	out := make(map[string]model.IndicatorOutput, len(requested))
	for _, name := range requested {
		out[name] = computeOne(s, name, params[name])
	}
	return out, nil
}

func computeOne(s series, name string, overrides map[string]float64) (result model.IndicatorOutput) {
	entry := catalogByName[name]
	merged := mergeParams(entry, overrides)

	need := minCandlesFor(name, merged)
	if len(s.close) < need {
		return model.IndicatorOutput{Err: fmt.Sprintf("window too short: need %d candles, have %d", need, len(s.close))}
	}

	fn := dispatch[name]

	defer func() {
		if r := recover(); r != nil {
			result = model.IndicatorOutput{Err: fmt.Sprintf("internal error computing %s: %v", name, r)}
		}
	}()
	return fn(s, merged)
}

// mergeParams applies defaults from the catalog entry, then overlays any
// caller-supplied value whose name matches a known parameter. Unrecognized
// parameter names are ignored — forward compatible — since none of
// this catalog's indicators change mathematical definition based on an
// unknown key.
func mergeParams(entry model.CatalogEntry, overrides map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(entry.Params))
	for _, p := range entry.Params {
		merged[p.Name] = p.Default
	}
	for k, v := range overrides {
		if _, known := merged[k]; known {
			merged[k] = v
		}
	}
	return merged
}
