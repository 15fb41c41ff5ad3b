// Package simulator forecasts a single stock's price by Monte Carlo simulation of
// Geometric Brownian Motion.
//
// A run is a single-pass chain with no retained state:
//
//	PriceSeries -> Estimate (mu, sigma) -> PathEnsemble -> SummaryStatistics
//
// Estimation uses simple daily returns r[t] = p[t]/p[t-1] - 1; mu is their mean and
// sigma their sample standard deviation (divisor n-1).
//
// Paths are integrated multiplicatively,
//
//	p[t] = p[t-1] * exp(z[t]*sigma*sqrt(A) + mu - sigma^2/2)
//
// where z[t] is standard normal and A is the annualization factor (252 by default).
// The shock is scaled by sqrt(A) even though each step is one trading day; set A to
// 1 for a plain daily-step model. Prices stay positive because every step multiplies
// by an exponential.
//
// Every path draws from its own stream, Randomness.Stream(path), so a seeded run
// produces the same ensemble regardless of how many workers fill it.
//
// Errors:
//
//   - ErrInsufficientData: fewer than two historical prices.
//   - ErrInvalidPrice: a historical price is zero, negative, NaN or infinite.
//   - ErrEmptyEnsemble: zero simulations requested, or summarizing an empty ensemble.
//   - ErrInvalidParameter: bad horizon, annualization factor, confidence or start price.
//   - ErrEnsembleTooLarge: horizon x simulations exceeds the configured cell limit.
//   - ErrNumericOverflow: a path left the representable positive range.
package simulator
