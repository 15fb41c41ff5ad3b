package simulator

import "math/rand/v2"

// Normal draws standard normal variates.
type Normal interface {
	NormFloat64() float64
}

// Randomness hands out one independent Normal stream per path index.
// Stream must be safe to call from multiple goroutines.
type Randomness interface {
	Stream(path int) Normal
}

type pcgRandomness struct {
	seed uint64
}

// NewSeededRandomness returns reproducible streams. Path i uses a PCG generator
// seeded with (seed, i).
func NewSeededRandomness(seed uint64) Randomness {
	return pcgRandomness{seed: seed}
}

// NewRandomness returns streams seeded from the runtime generator, so every call
// yields a different ensemble.
func NewRandomness() Randomness {
	return pcgRandomness{seed: rand.Uint64()}
}

func (r pcgRandomness) Stream(path int) Normal {
	return rand.New(rand.NewPCG(r.seed, uint64(path)))
}
