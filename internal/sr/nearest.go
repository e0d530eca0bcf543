package sr

import (
	"math"
	"sort"

	"candlestream/internal/model"
)

// Nearest returns the k levels (from both supports and resistances) closest
// to price p, ordered by absolute distance ascending and tie-broken by
// strength descending.
func Nearest(levels []model.SupportResistanceLevel, p float64, k int) []model.NearestLevel {
	out := make([]model.NearestLevel, len(levels))
	for i, lvl := range levels {
		dist := lvl.Price - p
		out[i] = model.NearestLevel{
			SupportResistanceLevel: lvl,
			Distance:               dist,
			DistancePct:            dist / p,
		}
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := math.Abs(out[i].Distance), math.Abs(out[j].Distance)
		if di != dj {
			return di < dj
		}
		return out[i].Strength > out[j].Strength
	})

	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
