package simulator

import (
	"fmt"
	"math"

	"GBMForecast/internal/calculator"
	"GBMForecast/internal/model"
)

// Estimate derives mu and sigma from the daily returns of series.
func Estimate(series *model.PriceSeries) (model.Estimate, error) {
	if series.Len() < 2 {
		return model.Estimate{}, fmt.Errorf("%w: got %d", ErrInsufficientData, series.Len())
	}
	for i, p := range series.Closes {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return model.Estimate{}, fmt.Errorf("%w: index %d is %v", ErrInvalidPrice, i, p)
		}
	}

	returns, err := calculator.PctChange(series.Closes)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("returns: %w", err)
	}
	mu, err := calculator.Mean(returns)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("mean: %w", err)
	}
	sigma, err := calculator.SampleStdDev(returns)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("std dev: %w", err)
	}

	return model.Estimate{
		Mu:           mu,
		Sigma:        sigma,
		Drift:        Drift(mu, sigma),
		LastPrice:    series.Last(),
		Observations: len(returns),
	}, nil
}

// Drift is the deterministic GBM step term mu - sigma^2/2.
func Drift(mu, sigma float64) float64 {
	return mu - 0.5*sigma*sigma
}
