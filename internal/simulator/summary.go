package simulator

import (
	"fmt"
	"math"

	"GBMForecast/internal/calculator"
	"GBMForecast/internal/model"
)

// DefaultConfidence yields the [2.5, 97.5] percentile band.
const DefaultConfidence = 0.95

// PercentileBounds converts a two-sided confidence level into percentile bounds.
func PercentileBounds(confidence float64) ([2]float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return [2]float64{}, invalidParam("confidence must be within (0, 1), got %v", confidence)
	}
	lower := roundBound(50 * (1 - confidence))
	upper := roundBound(50 * (1 + confidence))
	return [2]float64{lower, upper}, nil
}

// roundBound drops float noise so 0.95 maps to exactly 2.5 and 97.5.
func roundBound(p float64) float64 {
	return math.Round(p*1e9) / 1e9
}

// Summarize reduces the final row of ens to mean and percentile band.
func Summarize(ens *model.PathEnsemble, confidence float64) (model.SummaryStatistics, error) {
	if ens.Paths() == 0 || ens.Steps() == 0 {
		return model.SummaryStatistics{}, ErrEmptyEnsemble
	}
	bounds, err := PercentileBounds(confidence)
	if err != nil {
		return model.SummaryStatistics{}, err
	}

	final := ens.FinalRow()
	mean, err := calculator.Mean(final)
	if err != nil {
		return model.SummaryStatistics{}, fmt.Errorf("mean: %w", err)
	}
	band, err := calculator.Percentiles(final, bounds[0], bounds[1])
	if err != nil {
		return model.SummaryStatistics{}, fmt.Errorf("percentiles: %w", err)
	}
	low, high, err := calculator.MinMax(final)
	if err != nil {
		return model.SummaryStatistics{}, fmt.Errorf("range: %w", err)
	}
	std, err := calculator.SampleStdDev(final)
	if err != nil {
		return model.SummaryStatistics{}, fmt.Errorf("std dev: %w", err)
	}

	// Summation rounding can push the mean an ulp past a bound when paths agree.
	mean = math.Min(math.Max(mean, low), high)

	below := 0
	for p, v := range final {
		if v < ens.At(0, p) {
			below++
		}
	}

	return model.SummaryStatistics{
		Confidence:            confidence,
		PercentileBounds:      bounds,
		MeanFinalPrice:        mean,
		LowerPercentile:       band[0],
		UpperPercentile:       band[1],
		MinFinalPrice:         low,
		MaxFinalPrice:         high,
		StdDevFinalPrice:      std,
		ProbabilityBelowStart: float64(below) / float64(len(final)),
	}, nil
}
