// Package schema holds the request/response DTOs for the REST surface
// indicator calculation, support/resistance lookup, and
// system introspection. These are the wire shapes handlers decode into and
// encode from; they hold no behavior.
package schema

import "time"

// IndicatorCalculateRequest is the body of POST /indicators/calculate.
type IndicatorCalculateRequest struct {
	Symbol          string                        `json:"symbol"`
	Exchange        string                         `json:"exchange"`
	Interval        string                         `json:"interval"`
	StartDate       time.Time                      `json:"start_date"`
	EndDate         time.Time                      `json:"end_date"`
	Indicators      []string                       `json:"indicators,omitempty"`
	IndicatorParams map[string]map[string]float64  `json:"indicator_params,omitempty"`
}

// IndicatorResponse mirrors the requested indicator set, each series aligned
// to the candle window's timestamps.
type IndicatorResponse struct {
	Symbol     string                        `json:"symbol"`
	Exchange   string                        `json:"exchange"`
	Interval   string                        `json:"interval"`
	Timestamps []time.Time                   `json:"timestamps"`
	Indicators map[string]IndicatorSeries    `json:"indicators"`
	Errors     []string                      `json:"errors,omitempty"`
}

// IndicatorSeries is one indicator's output over the response's window.
type IndicatorSeries struct {
	Series map[string][]float64 `json:"series,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// MultiTimeframeRequest is the body of POST /indicators/multi-timeframe.
type MultiTimeframeRequest struct {
	Symbol          string                        `json:"symbol"`
	Exchange        string                        `json:"exchange"`
	Intervals       []string                      `json:"intervals"`
	StartDate       time.Time                     `json:"start_date"`
	EndDate         time.Time                     `json:"end_date"`
	Indicators      []string                      `json:"indicators,omitempty"`
	IndicatorParams map[string]map[string]float64 `json:"indicator_params,omitempty"`
}

// MultiTimeframeResponse maps each requested interval to its own indicator response.
type MultiTimeframeResponse struct {
	Symbol  string                       `json:"symbol"`
	ByTF    map[string]IndicatorResponse `json:"by_timeframe"`
}

// LatestIndicatorsResponse answers GET /indicators/latest/{symbol}: the
// latest non-sentinel value per requested indicator.
type LatestIndicatorsResponse struct {
	Symbol   string             `json:"symbol"`
	Exchange string             `json:"exchange"`
	Interval string             `json:"interval"`
	AsOf     time.Time          `json:"as_of"`
	Values   map[string]float64 `json:"values"`
	Errors   []string           `json:"errors,omitempty"`
}

// CatalogResponse answers GET /indicators/available.
type CatalogResponse struct {
	Indicators []CatalogEntry `json:"indicators"`
}

// CatalogEntry mirrors model.CatalogEntry for the wire.
type CatalogEntry struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Params     []ParamSpec `json:"params"`
	MinCandles int         `json:"min_candles"`
	Fields     []string    `json:"fields"`
}

// ParamSpec mirrors model.ParamSpec for the wire.
type ParamSpec struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
}
