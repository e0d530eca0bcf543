package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"candlestream/internal/apierr"
	"candlestream/internal/model"
	"candlestream/internal/schema"
	"candlestream/internal/sr"
	"candlestream/internal/validate"
)

// supportResistance dispatches GET /support-resistance/{symbol}[/pivots|/nearest].
func (h *handler) supportResistance(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/support-resistance/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		writeError(w, apierr.New(apierr.BadRequest, "symbol required"))
		return
	}

	symbol := segments[0]
	switch {
	case len(segments) == 1:
		h.supportResistanceLevels(w, r, symbol)
	case len(segments) == 2 && segments[1] == "pivots":
		h.supportResistancePivots(w, r, symbol)
	case len(segments) == 2 && segments[1] == "nearest":
		h.supportResistanceNearest(w, r, symbol)
	default:
		writeError(w, apierr.New(apierr.BadRequest, "unknown support-resistance route"))
	}
}

func (h *handler) supportResistanceLevels(w http.ResponseWriter, r *http.Request, symbol string) {
	q := r.URL.Query()
	exchange := q.Get("exchange")
	intervalRaw := q.Get("interval")
	lookbackDays := queryInt(q, "lookback_days", 90)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	window, err := h.resolveWindow(r.Context(), symbol, exchange, intervalRaw, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	params := sr.DefaultParams()
	if v := queryInt(q, "max_levels", 0); v > 0 {
		params.MaxLevels = v
	}
	if v := queryInt(q, "window_w", 0); v > 0 {
		params.WindowW = v
	}
	if v := queryFloat(q, "atr_mult", 0); v > 0 {
		params.ATRMult = v
	}

	result, err := h.deps.Dispatch.Run(r.Context(), func() (interface{}, error) {
		return sr.Run(window, params), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	res := result.(sr.Result)

	var currentPrice float64
	if len(window) > 0 {
		currentPrice = window[len(window)-1].Close
	}

	writeJSON(w, http.StatusOK, schema.SupportResistanceResponse{
		Symbol:       symbol,
		CurrentPrice: currentPrice,
		Support:      toLevelDTOs(res.Support),
		Resistance:   toLevelDTOs(res.Resistance),
		Tolerance:    res.Tolerance,
		ATR:          res.ATR,
	})
}

func (h *handler) supportResistancePivots(w http.ResponseWriter, r *http.Request, symbol string) {
	q := r.URL.Query()
	exchange := q.Get("exchange")
	intervalRaw := q.Get("interval")
	method := sr.PivotMethod(q.Get("method"))
	if method == "" {
		method = sr.Classic
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -5)
	window, err := h.resolveWindow(r.Context(), symbol, exchange, intervalRaw, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(window) == 0 {
		writeError(w, apierr.New(apierr.BadRequest, "no prior candle available to derive pivots from"))
		return
	}
	prior := window[len(window)-1]

	pivots := sr.Pivots(method, prior.High, prior.Low, prior.Close)
	writeJSON(w, http.StatusOK, schema.PivotsResponse{
		Symbol: symbol, Method: string(method),
		PP: pivots.PP, R1: pivots.R1, R2: pivots.R2, R3: pivots.R3,
		S1: pivots.S1, S2: pivots.S2, S3: pivots.S3,
	})
}

func (h *handler) supportResistanceNearest(w http.ResponseWriter, r *http.Request, symbol string) {
	q := r.URL.Query()
	exchange := q.Get("exchange")
	intervalRaw := q.Get("interval")
	count := queryInt(q, "count", 5)
	lookbackDays := queryInt(q, "lookback_days", 90)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	window, err := h.resolveWindow(r.Context(), symbol, exchange, intervalRaw, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	price := queryFloat(q, "price", 0)
	if price <= 0 && len(window) > 0 {
		price = window[len(window)-1].Close
	}
	if err := validate.Price(price); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deps.Dispatch.Run(r.Context(), func() (interface{}, error) {
		return sr.Run(window, sr.DefaultParams()), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	res := result.(sr.Result)

	all := append(append([]model.SupportResistanceLevel{}, res.Support...), res.Resistance...)
	nearest := sr.Nearest(all, price, count)

	dtos := make([]schema.NearestDTO, len(nearest))
	for i, n := range nearest {
		dtos[i] = schema.NearestDTO{
			LevelDTO:    toLevelDTO(n.SupportResistanceLevel),
			Distance:    n.Distance,
			DistancePct: n.DistancePct,
		}
	}

	writeJSON(w, http.StatusOK, schema.NearestLevelsResponse{Symbol: symbol, Price: price, Levels: dtos})
}

func toLevelDTOs(levels []model.SupportResistanceLevel) []schema.LevelDTO {
	out := make([]schema.LevelDTO, len(levels))
	for i, l := range levels {
		out[i] = toLevelDTO(l)
	}
	return out
}

func toLevelDTO(l model.SupportResistanceLevel) schema.LevelDTO {
	return schema.LevelDTO{
		Price: l.Price, Kind: string(l.Kind), Strength: l.Strength,
		Touches: l.Touches, LastTouch: l.LastTouch,
	}
}

func queryInt(q map[string][]string, key string, fallback int) int {
	v := firstOf(q, key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func queryFloat(q map[string][]string, key string, fallback float64) float64 {
	v := firstOf(q, key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func firstOf(q map[string][]string, key string) string {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return ""
	}
	return vs[0]
}
