package winsor

import (
	"math"
	"sort"
)

// PresentSorted returns a sorted copy of the non-NaN values
func PresentSorted(values []float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	return sorted
}

// Quantile interpolates linearly between the order statistics around p*(n-1).
// sorted must be ascending and free of NaN. An empty slice yields NaN.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	if pos <= 0 {
		return sorted[0]
	}
	if pos >= float64(n-1) {
		return sorted[n-1]
	}

	floor := math.Floor(pos)
	lower := sorted[int(floor)]
	fraction := pos - floor
	if fraction == 0 {
		return lower
	}
	upper := sorted[int(floor)+1]
	return lower + fraction*(upper-lower)
}
