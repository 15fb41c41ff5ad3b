package simulator

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"GBMForecast/internal/model"
)

// DefaultMaxCells bounds horizon x simulations for a single run.
const DefaultMaxCells = 50_000_000

// ValidateParameters checks params without touching any randomness.
// maxCells <= 0 disables the size guard.
func ValidateParameters(params model.SimulationParameters, maxCells int) error {
	if params.NumSimulations <= 0 {
		return fmt.Errorf("%w: got %d", ErrEmptyEnsemble, params.NumSimulations)
	}
	if params.HorizonDays <= 0 {
		return invalidParam("horizon days must be positive, got %d", params.HorizonDays)
	}
	a := params.AnnualizationFactor
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return invalidParam("annualization factor must be positive, got %v", a)
	}
	if maxCells > 0 && int64(params.HorizonDays)*int64(params.NumSimulations) > int64(maxCells) {
		return fmt.Errorf("%w: %d x %d exceeds %d cells",
			ErrEnsembleTooLarge, params.HorizonDays, params.NumSimulations, maxCells)
	}
	return nil
}

// GeneratePaths integrates params.NumSimulations GBM paths of params.HorizonDays
// steps starting at lastPrice. Paths are split into contiguous blocks across
// workers; workers <= 1 runs on the calling goroutine.
func GeneratePaths(lastPrice, mu, sigma float64, params model.SimulationParameters, rnd Randomness, workers int) (*model.PathEnsemble, error) {
	if err := ValidateParameters(params, 0); err != nil {
		return nil, err
	}
	if lastPrice <= 0 || math.IsNaN(lastPrice) || math.IsInf(lastPrice, 0) {
		return nil, invalidParam("start price must be positive and finite, got %v", lastPrice)
	}
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) || math.IsNaN(mu) || math.IsInf(mu, 0) {
		return nil, invalidParam("mu=%v sigma=%v", mu, sigma)
	}
	if rnd == nil {
		return nil, invalidParam("nil randomness")
	}

	steps, paths := params.HorizonDays, params.NumSimulations
	grid := mat.NewDense(steps, paths, nil)
	k := stepKernel{
		start: lastPrice,
		drift: Drift(mu, sigma),
		shock: sigma * math.Sqrt(params.AnnualizationFactor),
		steps: steps,
	}

	if workers > paths {
		workers = paths
	}
	if workers <= 1 {
		if !k.fill(grid, rnd, 0, paths) {
			return nil, ErrNumericOverflow
		}
		return model.NewPathEnsemble(grid), nil
	}

	ok := make([]bool, workers)
	block := (paths + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		from := w * block
		to := min(from+block, paths)
		if from >= to {
			ok[w] = true
			continue
		}
		wg.Add(1)
		go func(w, from, to int) {
			defer wg.Done()
			ok[w] = k.fill(grid, rnd, from, to)
		}(w, from, to)
	}
	wg.Wait()

	for _, good := range ok {
		if !good {
			return nil, ErrNumericOverflow
		}
	}
	return model.NewPathEnsemble(grid), nil
}

type stepKernel struct {
	start float64
	drift float64
	shock float64
	steps int
}

// fill writes columns [from, to). Each column touches only its own cells.
func (k stepKernel) fill(grid *mat.Dense, rnd Randomness, from, to int) bool {
	for p := from; p < to; p++ {
		grid.Set(0, p, k.start)
		if k.steps == 1 {
			continue
		}
		z := rnd.Stream(p)
		price := k.start
		for t := 1; t < k.steps; t++ {
			price *= math.Exp(z.NormFloat64()*k.shock + k.drift)
			if price == 0 || math.IsInf(price, 0) || math.IsNaN(price) {
				return false
			}
			grid.Set(t, p, price)
		}
	}
	return true
}
