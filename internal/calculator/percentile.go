package calculator

import (
	"errors"
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks. values is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("percentile of empty slice")
	}
	if p < 0 || p > 100 || math.IsNaN(p) {
		return 0, errors.New("percentile must be within [0, 100]")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p), nil
}

// Percentiles evaluates several percentiles with a single sort.
func Percentiles(values []float64, ps ...float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.New("percentile of empty slice")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := make([]float64, len(ps))
	for i, p := range ps {
		if p < 0 || p > 100 || math.IsNaN(p) {
			return nil, errors.New("percentile must be within [0, 100]")
		}
		out[i] = percentileSorted(sorted, p)
	}
	return out, nil
}

func percentileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// MinMax scans values for the lowest and highest entry.
func MinMax(values []float64) (low, high float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, v := range values {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return low, high, nil
}
