package indicator

import "candlestream/internal/model"

// catalog is the full set of indicators the engine knows how to compute.
// Every entry's Fields match exactly the output keys its compute function
// populates in IndicatorOutput.Series/Scalar.
var catalog = []model.CatalogEntry{
	{Name: "sma", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"value"}},
	{Name: "ema", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"value"}},
	{Name: "wma", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"value"}},
	{Name: "macd", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "fast", Default: 12}, {Name: "slow", Default: 26}, {Name: "signal", Default: 9}}, MinCandles: 35, Fields: []string{"macd", "signal", "hist"}},
	{Name: "adx", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 28, Fields: []string{"adx", "plus_di", "minus_di"}},
	{Name: "bbands", Category: model.CategoryVolatility, Params: []model.ParamSpec{{Name: "period", Default: 20}, {Name: "stddev", Default: 2}}, MinCandles: 20, Fields: []string{"high", "mid", "low", "width", "percent_b"}},
	{Name: "keltner", Category: model.CategoryVolatility, Params: []model.ParamSpec{{Name: "period", Default: 20}, {Name: "atr_mult", Default: 2}}, MinCandles: 20, Fields: []string{"high", "mid", "low"}},
	{Name: "donchian", Category: model.CategoryVolatility, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"high", "mid", "low"}},
	{Name: "ulcer", Category: model.CategoryVolatility, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 14, Fields: []string{"value"}},
	{Name: "rsi", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 15, Fields: []string{"value"}},
	{Name: "stoch_rsi", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period", Default: 14}, {Name: "k", Default: 3}, {Name: "d", Default: 3}}, MinCandles: 34, Fields: []string{"stoch_rsi", "k", "d"}},
	{Name: "tsi", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "long", Default: 25}, {Name: "short", Default: 13}}, MinCandles: 38, Fields: []string{"value"}},
	{Name: "uo", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period1", Default: 7}, {Name: "period2", Default: 14}, {Name: "period3", Default: 28}}, MinCandles: 29, Fields: []string{"value"}},
	{Name: "stoch", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "k", Default: 14}, {Name: "d", Default: 3}}, MinCandles: 17, Fields: []string{"k", "d"}},
	{Name: "willr", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 14, Fields: []string{"value"}},
	{Name: "ao", Category: model.CategoryMomentum, Params: nil, MinCandles: 34, Fields: []string{"value"}},
	{Name: "kama", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 10}}, MinCandles: 11, Fields: []string{"value"}},
	{Name: "roc", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period", Default: 12}}, MinCandles: 13, Fields: []string{"value"}},
	{Name: "ppo", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "fast", Default: 12}, {Name: "slow", Default: 26}, {Name: "signal", Default: 9}}, MinCandles: 35, Fields: []string{"line", "signal", "hist"}},
	{Name: "pvo", Category: model.CategoryVolume, Params: []model.ParamSpec{{Name: "fast", Default: 12}, {Name: "slow", Default: 26}, {Name: "signal", Default: 9}}, MinCandles: 35, Fields: []string{"line", "signal", "hist"}},
	{Name: "ichimoku", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "conversion", Default: 9}, {Name: "base", Default: 26}, {Name: "span_b", Default: 52}}, MinCandles: 78, Fields: []string{"a", "b", "base", "conversion"}},
	{Name: "psar", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "step", Default: 0.02}, {Name: "max", Default: 0.2}}, MinCandles: 2, Fields: []string{"psar", "up", "down"}},
	{Name: "stc", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "fast", Default: 23}, {Name: "slow", Default: 50}, {Name: "cycle", Default: 10}}, MinCandles: 70, Fields: []string{"value"}},
	{Name: "aroon", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 25}}, MinCandles: 26, Fields: []string{"up", "down", "indicator"}},
	{Name: "vortex", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 15, Fields: []string{"plus", "minus"}},
	{Name: "trix", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 15}}, MinCandles: 45, Fields: []string{"value"}},
	{Name: "mass_index", Category: model.CategoryVolatility, Params: []model.ParamSpec{{Name: "ema_period", Default: 9}, {Name: "sum_period", Default: 25}}, MinCandles: 34, Fields: []string{"value"}},
	{Name: "cci", Category: model.CategoryMomentum, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"value"}},
	{Name: "dpo", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 40, Fields: []string{"value"}},
	{Name: "kst", Category: model.CategoryTrend, Params: []model.ParamSpec{{Name: "roc1", Default: 10}, {Name: "roc2", Default: 15}, {Name: "roc3", Default: 20}, {Name: "roc4", Default: 30}, {Name: "signal", Default: 9}}, MinCandles: 54, Fields: []string{"kst", "signal"}},
	{Name: "mfi", Category: model.CategoryVolume, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 15, Fields: []string{"value"}},
	{Name: "adi", Category: model.CategoryVolume, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "obv", Category: model.CategoryVolume, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "cmf", Category: model.CategoryVolume, Params: []model.ParamSpec{{Name: "period", Default: 20}}, MinCandles: 20, Fields: []string{"value"}},
	{Name: "force_index", Category: model.CategoryVolume, Params: []model.ParamSpec{{Name: "period", Default: 13}}, MinCandles: 14, Fields: []string{"value"}},
	{Name: "eom", Category: model.CategoryVolume, Params: []model.ParamSpec{{Name: "period", Default: 14}}, MinCandles: 15, Fields: []string{"value"}},
	{Name: "vpt", Category: model.CategoryVolume, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "nvi", Category: model.CategoryVolume, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "vwap", Category: model.CategoryVolume, Params: nil, MinCandles: 1, Fields: []string{"value"}},
	{Name: "return", Category: model.CategoryOther, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "log_return", Category: model.CategoryOther, Params: nil, MinCandles: 2, Fields: []string{"value"}},
	{Name: "cumulative_return", Category: model.CategoryOther, Params: nil, MinCandles: 2, Fields: []string{"value"}},
}

var catalogByName map[string]model.CatalogEntry

func init() {
	catalogByName = make(map[string]model.CatalogEntry, len(catalog))
	for _, e := range catalog {
		catalogByName[e.Name] = e
	}
}

// Catalog returns the full indicator catalog for discovery endpoints.
func Catalog() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for name, if it exists.
func Lookup(name string) (model.CatalogEntry, bool) {
	e, ok := catalogByName[name]
	return e, ok
}
