package indicator

// minCandlesFor computes the effective minimum window length for name given
// its merged (defaults + overrides) parameters. This mirrors the warmup
// arithmetic inside each compute function — it exists so a caller that
// overrides a period to something shorter (or longer) than the catalog
// default gets a minimum that tracks the override, rather than the
// catalog's default-parameter figure.
var minCandlesFns = map[string]func(p map[string]float64) int{
	"sma":     func(p map[string]float64) int { return intParam(p, "period", 20) },
	"ema":     func(p map[string]float64) int { return intParam(p, "period", 20) },
	"wma":     func(p map[string]float64) int { return intParam(p, "period", 20) },
	"macd":    func(p map[string]float64) int { return intParam(p, "slow", 26) + intParam(p, "signal", 9) },
	"adx":     func(p map[string]float64) int { return 2 * intParam(p, "period", 14) },
	"bbands":  func(p map[string]float64) int { return intParam(p, "period", 20) },
	"keltner": func(p map[string]float64) int { return intParam(p, "period", 20) },
	"donchian": func(p map[string]float64) int { return intParam(p, "period", 20) },
	"ulcer":    func(p map[string]float64) int { return intParam(p, "period", 14) },
	"rsi":      func(p map[string]float64) int { return intParam(p, "period", 14) + 1 },
	"stoch_rsi": func(p map[string]float64) int {
		return 2*intParam(p, "period", 14) + intParam(p, "k", 3) + intParam(p, "d", 3)
	},
	"tsi":  func(p map[string]float64) int { return intParam(p, "long", 25) + intParam(p, "short", 13) },
	"uo":   func(p map[string]float64) int { return intParam(p, "period3", 28) + 1 },
	"stoch": func(p map[string]float64) int { return intParam(p, "k", 14) + intParam(p, "d", 3) },
	"willr": func(p map[string]float64) int { return intParam(p, "period", 14) },
	"ao":    func(p map[string]float64) int { return 34 },
	"kama":  func(p map[string]float64) int { return intParam(p, "period", 10) + 1 },
	"roc":   func(p map[string]float64) int { return intParam(p, "period", 12) + 1 },
	"ppo":   func(p map[string]float64) int { return intParam(p, "slow", 26) + intParam(p, "signal", 9) },
	"pvo":   func(p map[string]float64) int { return intParam(p, "slow", 26) + intParam(p, "signal", 9) },
	"ichimoku": func(p map[string]float64) int {
		return intParam(p, "span_b", 52) + intParam(p, "base", 26)
	},
	"psar": func(p map[string]float64) int { return 2 },
	"stc": func(p map[string]float64) int {
		return intParam(p, "slow", 50) + 2*intParam(p, "cycle", 10)
	},
	"aroon":  func(p map[string]float64) int { return intParam(p, "period", 25) + 1 },
	"vortex": func(p map[string]float64) int { return intParam(p, "period", 14) + 1 },
	"trix":   func(p map[string]float64) int { return 3 * intParam(p, "period", 15) },
	"mass_index": func(p map[string]float64) int {
		return intParam(p, "sum_period", 25) + intParam(p, "ema_period", 9)
	},
	"cci": func(p map[string]float64) int { return intParam(p, "period", 20) },
	"dpo": func(p map[string]float64) int { return 2 * intParam(p, "period", 20) },
	"kst": func(p map[string]float64) int {
		return intParam(p, "roc4", 30) + 15 + intParam(p, "signal", 9)
	},
	"mfi":         func(p map[string]float64) int { return intParam(p, "period", 14) + 1 },
	"adi":         func(p map[string]float64) int { return 2 },
	"obv":         func(p map[string]float64) int { return 2 },
	"cmf":         func(p map[string]float64) int { return intParam(p, "period", 20) },
	"force_index": func(p map[string]float64) int { return intParam(p, "period", 13) + 1 },
	"eom":         func(p map[string]float64) int { return intParam(p, "period", 14) + 1 },
	"vpt":         func(p map[string]float64) int { return 2 },
	"nvi":         func(p map[string]float64) int { return 2 },
	"vwap":        func(p map[string]float64) int { return 1 },
	"return":            func(p map[string]float64) int { return 2 },
	"log_return":        func(p map[string]float64) int { return 2 },
	"cumulative_return": func(p map[string]float64) int { return 2 },
}

func minCandlesFor(name string, merged map[string]float64) int {
	if fn, ok := minCandlesFns[name]; ok {
		return fn(merged)
	}
	entry := catalogByName[name]
	return entry.MinCandles
}
