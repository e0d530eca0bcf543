package historical

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candlestream/internal/apierr"
	"candlestream/internal/model"
)

func TestHTTPSource_DecodesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Candle{{Symbol: "RELIANCE", Close: 100}})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	candles, err := src.FetchCandles(context.Background(), "RELIANCE", "NSE", "1m", time.Now(), time.Now())
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if len(candles) != 1 || candles[0].Symbol != "RELIANCE" {
		t.Fatalf("got %+v", candles)
	}
}

func TestHTTPSource_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	_, err := src.FetchCandles(context.Background(), "RELIANCE", "NSE", "1m", time.Now(), time.Now())

	var apiErr *apierr.Error
	if err == nil {
		t.Fatal("expected error")
	}
	if !asApiErr(err, &apiErr) || apiErr.Kind != apierr.HistoricalUnavailable {
		t.Fatalf("got %v, want HistoricalUnavailable", err)
	}
}

func TestHTTPSource_ClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	_, err := src.FetchCandles(context.Background(), "RELIANCE", "NSE", "1m", time.Now(), time.Now())

	var apiErr *apierr.Error
	if err == nil {
		t.Fatal("expected error")
	}
	if !asApiErr(err, &apiErr) || apiErr.Kind != apierr.HistoricalInvalidRequest {
		t.Fatalf("got %v, want HistoricalInvalidRequest", err)
	}
}

func asApiErr(err error, target **apierr.Error) bool {
	e, ok := err.(*apierr.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
