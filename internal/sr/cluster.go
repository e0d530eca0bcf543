package sr

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"candlestream/internal/model"
)

// extremum is one detected swing high or low, tagged with its position in
// the window so recency weighting can reference it later.
type extremum struct {
	index     int
	price     float64
	volume    float64
	timestamp time.Time
	kind      model.LevelKind
}

// cluster groups extrema whose price falls within tol of the preceding
// member (single-link 1-D clustering), after sorting by price. Supports and
// resistances are clustered independently by the caller.
func cluster(points []extremum, tol float64) [][]extremum {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]extremum, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })

	var clusters [][]extremum
	current := []extremum{sorted[0]}
	for _, e := range sorted[1:] {
		if e.price-current[len(current)-1].price <= tol {
			current = append(current, e)
		} else {
			clusters = append(clusters, current)
			current = []extremum{e}
		}
	}
	clusters = append(clusters, current)
	return clusters
}

// weighPoints assigns each extremum a weight of recency x volume, where
// recency decays exponentially with half-life halfLifeBars measured in bars
// back from the end of the window (n is the window length).
func weighPoints(points []extremum, n int, halfLifeBars float64) []float64 {
	weights := make([]float64, len(points))
	for i, e := range points {
		barsBack := float64(n-1-e.index) / halfLifeBars
		recency := math.Pow(0.5, barsBack)
		vol := e.volume
		if vol <= 0 {
			vol = 1
		}
		weights[i] = recency * vol
	}
	return weights
}

// levelFromCluster computes a single SupportResistanceLevel from a cluster
// of extrema: price is the recency/volume-weighted mean, strength_raw is
// the summed weight (normalized by the caller across the whole run),
// touches is the cluster size, and last_touch is the most recent extremum's
// timestamp.
func levelFromCluster(points []extremum, n int, halfLifeBars float64) (level model.SupportResistanceLevel, strengthRaw float64) {
	prices := make([]float64, len(points))
	for i, e := range points {
		prices[i] = e.price
	}
	weights := weighPoints(points, n, halfLifeBars)

	weightedPrice := stat.Mean(prices, weights)

	lastTouch := points[0].timestamp
	var sum float64
	for i, e := range points {
		sum += weights[i]
		if e.timestamp.After(lastTouch) {
			lastTouch = e.timestamp
		}
	}

	return model.SupportResistanceLevel{
		Price:     weightedPrice,
		Kind:      points[0].kind,
		Touches:   len(points),
		LastTouch: lastTouch,
	}, sum
}
