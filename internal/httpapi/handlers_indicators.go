package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"candlestream/internal/apierr"
	"candlestream/internal/indicator"
	"candlestream/internal/model"
	"candlestream/internal/schema"
	"candlestream/internal/timeframe"
	"candlestream/internal/validate"
)

func (h *handler) calculateIndicators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apierr.New(apierr.BadRequest, "POST required"))
		return
	}

	var req schema.IndicatorCalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body: "+err.Error()))
		return
	}

	window, err := h.resolveWindow(r.Context(), req.Symbol, req.Exchange, req.Interval, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.computeIndicatorResponse(r.Context(), window, req.Symbol, req.Exchange, req.Interval, req.Indicators, req.IndicatorParams)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) multiTimeframeIndicators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apierr.New(apierr.BadRequest, "POST required"))
		return
	}

	var req schema.MultiTimeframeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body: "+err.Error()))
		return
	}
	if len(req.Intervals) == 0 {
		writeError(w, apierr.New(apierr.BadRequest, "intervals must not be empty"))
		return
	}

	byTF := make(map[string]schema.IndicatorResponse, len(req.Intervals))
	for _, interval := range req.Intervals {
		window, err := h.resolveWindow(r.Context(), req.Symbol, req.Exchange, interval, req.StartDate, req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		resp, err := h.computeIndicatorResponse(r.Context(), window, req.Symbol, req.Exchange, interval, req.Indicators, req.IndicatorParams)
		if err != nil {
			writeError(w, err)
			return
		}
		byTF[interval] = resp
	}

	writeJSON(w, http.StatusOK, schema.MultiTimeframeResponse{Symbol: req.Symbol, ByTF: byTF})
}

func (h *handler) latestIndicators(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/indicators/latest/")
	if symbol == "" {
		writeError(w, apierr.New(apierr.BadRequest, "symbol required"))
		return
	}

	q := r.URL.Query()
	exchange := q.Get("exchange")
	intervalRaw := q.Get("interval")
	names := splitCSV(q.Get("indicators"))

	window, err := h.resolveWindow(r.Context(), symbol, exchange, intervalRaw, time.Time{}, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}

	tf, err := validate.Timeframe(intervalRaw)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.runIndicators(r.Context(), window, names, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	values := make(map[string]float64, len(out))
	var errs []string
	for name, result := range out {
		if result.Err != "" {
			errs = append(errs, name+": "+result.Err)
			continue
		}
		for field, series := range result.Series {
			key := name
			if len(result.Series) > 1 {
				key = name + "." + field
			}
			values[key] = lastNonSentinel(series)
		}
		for field, v := range result.Scalar {
			key := name
			if len(result.Scalar) > 1 {
				key = name + "." + field
			}
			values[key] = v
		}
	}

	var asOf time.Time
	if len(window) > 0 {
		asOf = window[len(window)-1].BucketStart
	}

	writeJSON(w, http.StatusOK, schema.LatestIndicatorsResponse{
		Symbol: symbol, Exchange: exchange, Interval: tf, AsOf: asOf, Values: values, Errors: errs,
	})
}

func (h *handler) catalog(w http.ResponseWriter, r *http.Request) {
	entries := indicator.Catalog()
	out := make([]schema.CatalogEntry, len(entries))
	for i, e := range entries {
		params := make([]schema.ParamSpec, len(e.Params))
		for j, p := range e.Params {
			params[j] = schema.ParamSpec{Name: p.Name, Default: p.Default}
		}
		out[i] = schema.CatalogEntry{
			Name: e.Name, Category: string(e.Category), Params: params,
			MinCandles: e.MinCandles, Fields: e.Fields,
		}
	}
	writeJSON(w, http.StatusOK, schema.CatalogResponse{Indicators: out})
}

// resolveWindow validates the request boundary and fetches the candle
// window from the historical source. An unset start/end defaults to a
// trailing window sized for the timeframe so /indicators/latest doesn't
// require callers to pick an explicit range.
func (h *handler) resolveWindow(ctx context.Context, symbol, exchange, intervalRaw string, start, end time.Time) ([]model.Candle, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, err
	}
	ex, err := validate.Exchange(exchange)
	if err != nil {
		return nil, err
	}
	tf, err := validate.Timeframe(intervalRaw)
	if err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = defaultLookbackStart(end, tf)
	}
	if err := validate.DateRange(start, end); err != nil {
		return nil, err
	}

	result, err := h.deps.Dispatch.Run(ctx, func() (interface{}, error) {
		return h.deps.Historical.FetchCandles(ctx, sym, ex, tf, start, end)
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Candle), nil
}

func (h *handler) computeIndicatorResponse(ctx context.Context, window []model.Candle, symbol, exchange, interval string, names []string, params map[string]map[string]float64) (schema.IndicatorResponse, error) {
	out, err := h.runIndicators(ctx, window, names, params)
	if err != nil {
		return schema.IndicatorResponse{}, err
	}

	timestamps := make([]time.Time, len(window))
	for i, c := range window {
		timestamps[i] = c.BucketStart
	}

	indicators := make(map[string]schema.IndicatorSeries, len(out))
	var errs []string
	for name, result := range out {
		if result.Err != "" {
			errs = append(errs, name+": "+result.Err)
			indicators[name] = schema.IndicatorSeries{Error: result.Err}
			continue
		}
		indicators[name] = schema.IndicatorSeries{Series: result.Series}
	}

	return schema.IndicatorResponse{
		Symbol: symbol, Exchange: exchange, Interval: interval,
		Timestamps: timestamps, Indicators: indicators, Errors: errs,
	}, nil
}

func (h *handler) runIndicators(ctx context.Context, window []model.Candle, names []string, params map[string]map[string]float64) (map[string]model.IndicatorOutput, error) {
	result, err := h.deps.Dispatch.Run(ctx, func() (interface{}, error) {
		return indicator.Compute(window, names, params)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]model.IndicatorOutput), nil
}

func defaultLookbackStart(end time.Time, tf string) time.Time {
	const defaultBars = 300
	if secs, ok := timeframe.DurationSeconds(tf); ok {
		return end.Add(-time.Duration(secs*defaultBars) * time.Second)
	}
	return end.AddDate(0, 0, -400) // calendar-month timeframe: fall back to ~400 days
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lastNonSentinel(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !model.IsSentinel(series[i]) {
			return series[i]
		}
	}
	return model.Sentinel
}
