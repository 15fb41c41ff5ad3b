package simulator

import (
	"fmt"
	"runtime"

	"GBMForecast/internal/model"
)

// Simulator runs the estimate -> paths -> summary pipeline with fixed settings.
type Simulator struct {
	rnd        Randomness
	workers    int
	maxCells   int
	confidence float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRandomness injects the source of normal draws.
func WithRandomness(r Randomness) Option {
	return func(s *Simulator) { s.rnd = r }
}

// WithSeed makes runs reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.rnd = NewSeededRandomness(seed) }
}

// WithWorkers sets the number of goroutines filling paths. 1 runs sequentially.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithMaxCells bounds horizon x simulations. n <= 0 disables the bound.
func WithMaxCells(n int) Option {
	return func(s *Simulator) { s.maxCells = n }
}

// WithConfidence sets the two-sided band, e.g. 0.95 for [2.5, 97.5].
func WithConfidence(c float64) Option {
	return func(s *Simulator) { s.confidence = c }
}

// New builds a Simulator. Without WithSeed or WithRandomness every run differs.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		workers:    runtime.GOMAXPROCS(0),
		maxCells:   DefaultMaxCells,
		confidence: DefaultConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = NewRandomness()
	}
	return s
}

// Validate checks params and the configured confidence without drawing.
func (s *Simulator) Validate(params model.SimulationParameters) error {
	if err := ValidateParameters(params, s.maxCells); err != nil {
		return err
	}
	_, err := PercentileBounds(s.confidence)
	return err
}

// Run validates params, estimates mu and sigma from series, simulates the
// ensemble and summarizes it. Nothing is drawn when validation fails.
func (s *Simulator) Run(series *model.PriceSeries, params model.SimulationParameters) (*model.Result, error) {
	if err := s.Validate(params); err != nil {
		return nil, err
	}

	est, err := Estimate(series)
	if err != nil {
		return nil, err
	}

	ens, err := GeneratePaths(est.LastPrice, est.Mu, est.Sigma, params, s.rnd, s.workers)
	if err != nil {
		return nil, fmt.Errorf("generate paths: %w", err)
	}

	summary, err := Summarize(ens, s.confidence)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	res := &model.Result{
		Params:   params,
		Estimate: est,
		Ensemble: ens,
		Summary:  summary,
	}
	if series != nil {
		res.Symbol = series.Symbol
	}
	return res, nil
}
