package domain

import (
	"math/rand/v2"
)

// Noise is a source of standard normal samples (mean 0, stddev 1).
// *rand.Rand satisfies it.
type Noise interface {
	NormFloat64() float64
}

// NewNoise returns a PCG-backed source. A nil seed draws a fresh one, so production runs
// differ; tests pass an explicit seed for reproducible series.
func NewNoise(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}
