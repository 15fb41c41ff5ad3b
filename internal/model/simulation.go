package model

import "gonum.org/v1/gonum/mat"

// DefaultAnnualizationFactor is the number of trading days per year.
const DefaultAnnualizationFactor = 252.0

// SimulationParameters controls the size of a Monte Carlo run.
type SimulationParameters struct {
	NumSimulations      int
	HorizonDays         int
	AnnualizationFactor float64
}

// DefaultParameters mirrors the usual one-year, thousand-path run.
func DefaultParameters() SimulationParameters {
	return SimulationParameters{
		NumSimulations:      1000,
		HorizonDays:         252,
		AnnualizationFactor: DefaultAnnualizationFactor,
	}
}

// Estimate holds the drift and volatility derived from history.
type Estimate struct {
	Mu           float64 // mean daily return
	Sigma        float64 // sample std dev of daily returns
	Drift        float64 // Mu - Sigma^2/2
	LastPrice    float64
	Observations int // number of returns used
}

// PathEnsemble is a [horizon x simulations] price grid. Column i is path i.
type PathEnsemble struct {
	grid *mat.Dense
}

// NewPathEnsemble wraps an existing grid.
func NewPathEnsemble(grid *mat.Dense) *PathEnsemble {
	return &PathEnsemble{grid: grid}
}

// Steps returns the number of time steps (rows).
func (e *PathEnsemble) Steps() int {
	if e == nil || e.grid == nil {
		return 0
	}
	r, _ := e.grid.Dims()
	return r
}

// Paths returns the number of simulated paths (columns).
func (e *PathEnsemble) Paths() int {
	if e == nil || e.grid == nil {
		return 0
	}
	_, c := e.grid.Dims()
	return c
}

// At returns the price of path at step.
func (e *PathEnsemble) At(step, path int) float64 {
	return e.grid.At(step, path)
}

// Row copies all path prices at one step.
func (e *PathEnsemble) Row(step int) []float64 {
	return mat.Row(nil, step, e.grid)
}

// Path copies a single simulated path.
func (e *PathEnsemble) Path(path int) []float64 {
	return mat.Col(nil, path, e.grid)
}

// FinalRow copies the last step of every path.
func (e *PathEnsemble) FinalRow() []float64 {
	return e.Row(e.Steps() - 1)
}

// Matrix exposes the underlying grid read-only.
func (e *PathEnsemble) Matrix() mat.Matrix {
	return e.grid
}

// SummaryStatistics summarizes the final row of an ensemble.
type SummaryStatistics struct {
	Confidence            float64
	PercentileBounds      [2]float64 // e.g. {2.5, 97.5}
	MeanFinalPrice        float64
	LowerPercentile       float64
	UpperPercentile       float64
	MinFinalPrice         float64
	MaxFinalPrice         float64
	StdDevFinalPrice      float64
	ProbabilityBelowStart float64 // fraction of paths ending below step 0
}

// Result is the full output of one simulation run.
type Result struct {
	Symbol   string
	Params   SimulationParameters
	Estimate Estimate
	Ensemble *PathEnsemble
	Summary  SummaryStatistics
}
