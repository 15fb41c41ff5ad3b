package simulator

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indicates fewer than two prices were supplied.
	ErrInsufficientData = errors.New("simulator: at least two historical prices are required")
	// ErrInvalidPrice indicates a non-positive or non-finite historical price.
	ErrInvalidPrice = errors.New("simulator: historical prices must be positive and finite")
	// ErrEmptyEnsemble indicates a request for, or a summary of, zero paths.
	ErrEmptyEnsemble = errors.New("simulator: number of simulations must be positive")
	// ErrInvalidParameter indicates a malformed simulation parameter.
	ErrInvalidParameter = errors.New("simulator: invalid parameter")
	// ErrEnsembleTooLarge indicates horizon x simulations is above the cell limit.
	ErrEnsembleTooLarge = fmt.Errorf("%w: ensemble too large", ErrInvalidParameter)
	// ErrNumericOverflow indicates a simulated price underflowed to zero or overflowed.
	ErrNumericOverflow = errors.New("simulator: simulated price left the finite positive range")
)

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
