package timeframe

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1m", "1m", false},
		{"5min", "5m", false},
		{"hour", "1h", false},
		{"daily", "1d", false},
		{"weekly", "1w", false},
		{"monthly", "1M", false},
		{"  15m  ", "15m", false},
		{"7m", "", true},
		{"", "", true},
		{"bogus", "", true},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q): expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"1m", "1h", "1d", "1w", "1M"} {
		first, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", raw, err)
		}
		second, err := Normalize(first)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", first, err)
		}
		if first != second {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", raw, first, second)
		}
	}
}

func TestBucketStartIntraday(t *testing.T) {
	ts := time.Date(2026, 7, 31, 9, 31, 47, 0, time.UTC)
	got := BucketStart(ts, "5m")
	want := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("BucketStart = %v, want %v", got, want)
	}
}

func TestBucketStartOnBoundary(t *testing.T) {
	ts := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)
	got := BucketStart(ts, "5m")
	if !got.Equal(ts) {
		t.Errorf("tick exactly on boundary should belong to that bucket, got %v", got)
	}
}

func TestBucketStartIdempotent(t *testing.T) {
	ts := time.Date(2026, 7, 31, 14, 17, 3, 0, time.UTC)
	for _, tf := range []string{"1m", "15m", "1h", "1d", "1w", "1M"} {
		b1 := BucketStart(ts, tf)
		b2 := BucketStart(b1, tf)
		if !b1.Equal(b2) {
			t.Errorf("BucketStart(%s) not idempotent: %v -> %v", tf, b1, b2)
		}
	}
}

func TestBucketStartWeekly(t *testing.T) {
	// 2026-07-31 is a Friday; the week should align to Monday 2026-07-27.
	ts := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	got := BucketStart(ts, "1w")
	want := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("BucketStart(1w) = %v, want %v", got, want)
	}
}

func TestBucketStartMonthly(t *testing.T) {
	ts := time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)
	got := BucketStart(ts, "1M")
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("BucketStart(1M) = %v, want %v", got, want)
	}
}

func TestNextBucketStart(t *testing.T) {
	b := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)
	got := NextBucketStart(b, "5m")
	want := time.Date(2026, 7, 31, 9, 35, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextBucketStart = %v, want %v", got, want)
	}
}

func TestNextBucketStartMonthly(t *testing.T) {
	b := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	got := NextBucketStart(b, "1M")
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextBucketStart(1M) = %v, want %v", got, want)
	}
}
