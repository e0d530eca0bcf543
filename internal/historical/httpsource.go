package historical

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"candlestream/internal/apierr"
	"candlestream/internal/model"
)

// HTTPSource is a Source backed by an upstream HTTP candle history service.
// It is deliberately thin: one GET per call, JSON array response. A 5xx or
// a transport-level failure is classified transient (worth the Adapter's
// retry schedule); a 4xx is classified permanent.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds an HTTPSource against baseURL (e.g.
// "http://localhost:9100/history"). timeout bounds each individual request,
// independent of the Adapter's own CallTimeout wrapper.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTPSource) FetchCandles(ctx context.Context, symbol, exchange, interval string, start, end time.Time) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("exchange", exchange)
	q.Set("interval", interval)
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("end", strconv.FormatInt(end.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apierr.New(apierr.HistoricalInvalidRequest, err.Error())
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apierr.New(apierr.HistoricalUnavailable, fmt.Sprintf("history backend unreachable: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, apierr.New(apierr.HistoricalUnavailable, fmt.Sprintf("history backend status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, apierr.New(apierr.HistoricalInvalidRequest, fmt.Sprintf("history backend status %d", resp.StatusCode))
	}

	var candles []model.Candle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, apierr.New(apierr.HistoricalUnavailable, "malformed history backend response: "+err.Error())
	}
	return candles, nil
}
