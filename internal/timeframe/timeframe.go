// Package timeframe normalizes timeframe strings and computes bucket
// alignment for them. It is the single definition of bucket alignment in
// the system — the aggregator must use BucketStart and no other function,
// so that out-of-order handling stays deterministic.
package timeframe

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"candlestream/internal/apierr"
)

// canonical is the closed set of timeframe forms the system understands.
var canonical = map[string]bool{
	"1m": true, "3m": true, "5m": true, "10m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true,
	"1d": true, "1w": true, "1M": true,
}

var aliases = map[string]string{
	"min":     "1m",
	"hour":    "1h",
	"daily":   "1d",
	"weekly":  "1w",
	"monthly": "1M",
}

// Normalize validates and canonicalizes a raw timeframe string. Accepted
// forms are the canonical set (1m 3m 5m 10m 15m 30m 1h 2h 4h 1d 1w 1M), the
// same minute counts written with a "min" suffix ("5min"), plus the aliases
// min/hour/daily/weekly/monthly; any other "<n><unit>" is rejected. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apierr.InvalidTimeframe("empty timeframe")
	}
	if alias, ok := aliases[s]; ok {
		s = alias
	}
	// "min" with a leading count, e.g. "5min" -> "5m"
	if strings.HasSuffix(s, "min") && !canonical[s] {
		s = strings.TrimSuffix(s, "min") + "m"
	}
	if canonical[s] {
		return s, nil
	}
	return "", apierr.InvalidTimeframe(raw)
}

// All returns the closed set of canonical timeframe strings, sorted.
func All() []string {
	out := make([]string, 0, len(canonical))
	for tf := range canonical {
		out = append(out, tf)
	}
	sort.Strings(out)
	return out
}

// durationSeconds returns the constant bucket width in seconds for
// intraday/daily/weekly timeframes. 1M has no constant width (calendar
// month) and is handled separately by BucketStart.
func durationSeconds(tf string) (int64, bool) {
	if tf == "1M" {
		return 0, false
	}
	unit := tf[len(tf)-1]
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil {
		return 0, false
	}
	switch unit {
	case 'm':
		return int64(n) * 60, true
	case 'h':
		return int64(n) * 3600, true
	case 'd':
		return int64(n) * 86400, true
	case 'w':
		return int64(n) * 7 * 86400, true
	}
	return 0, false
}

// DurationSeconds returns the bucket width in seconds for canonical
// timeframes with a constant width. For "1M" it returns false — callers
// needing the actual width of the current bucket should use BucketStart
// twice (this bucket's start and the following month's start).
func DurationSeconds(canonicalTF string) (int64, bool) {
	return durationSeconds(canonicalTF)
}

// BucketStart returns the start of the bucket (aligned per the timeframe's
// rules) that ts falls into. Pure; never mutates ts. Idempotent:
// BucketStart(BucketStart(t, T), T) == BucketStart(t, T).
func BucketStart(ts time.Time, canonicalTF string) time.Time {
	ts = ts.UTC()

	switch canonicalTF {
	case "1M":
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "1w":
		// Align to the Monday 00:00 UTC preceding ts.
		day := ts.Weekday()
		// time.Sunday == 0; convert to ISO where Monday == 0.
		isoOffset := (int(day) + 6) % 7
		d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, -isoOffset)
	}

	width, ok := durationSeconds(canonicalTF)
	if !ok {
		return ts
	}
	sec := ts.Unix()
	aligned := sec - (sec % width)
	return time.Unix(aligned, 0).UTC()
}

// NextBucketStart returns the start of the bucket immediately following the
// one containing ts, for the given timeframe. Used to detect whether a
// newly arrived bucket is the immediate successor of the currently open one.
func NextBucketStart(bucketStart time.Time, canonicalTF string) time.Time {
	switch canonicalTF {
	case "1M":
		return bucketStart.AddDate(0, 1, 0)
	case "1w":
		return bucketStart.AddDate(0, 0, 7)
	}
	width, ok := durationSeconds(canonicalTF)
	if !ok {
		return bucketStart
	}
	return bucketStart.Add(time.Duration(width) * time.Second)
}
