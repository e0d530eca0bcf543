package httpapi

import (
	"net/http"
	"strings"
	"time"

	"candlestream/internal/apierr"
)

// candlesPassthrough answers GET /candles/{symbol} by forwarding straight to
// the historical source, with the same window-resolution rules as the
// indicator handlers but no indicator computation on top.
func (h *handler) candlesPassthrough(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, apierr.New(apierr.BadRequest, "GET required"))
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/candles/")
	if symbol == "" {
		writeError(w, apierr.New(apierr.BadRequest, "symbol required"))
		return
	}

	q := r.URL.Query()
	exchange := q.Get("exchange")
	intervalRaw := q.Get("interval")

	var start, end time.Time
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, apierr.New(apierr.BadRequest, "start_date must be RFC3339"))
			return
		}
		start = t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, apierr.New(apierr.BadRequest, "end_date must be RFC3339"))
			return
		}
		end = t
	}

	window, err := h.resolveWindow(r.Context(), symbol, exchange, intervalRaw, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, window)
}
