package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// PctChange returns the day-over-day fractional change of prices:
// r[t] = p[t]/p[t-1] - 1. The result has len(prices)-1 entries.
func PctChange(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, errors.New("need at least two prices for returns")
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			return nil, errors.New("zero price in series")
		}
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns, nil
}

// Mean computes the arithmetic mean.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("mean of empty slice")
	}
	return stat.Mean(values, nil), nil
}

// SampleStdDev computes the unbiased (n-1) standard deviation.
// A single observation has no spread and yields 0.
func SampleStdDev(values []float64) (float64, error) {
	switch len(values) {
	case 0:
		return 0, errors.New("std dev of empty slice")
	case 1:
		return 0, nil
	}
	return stat.StdDev(values, nil), nil
}
