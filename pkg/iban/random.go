package iban

import "math/rand/v2"

// RandomSource supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom is the process-wide source. It is safe for concurrent use.
var DefaultRandom RandomSource = globalSource{}

// NewSeededSource returns a deterministic source for reproducible output.
// The returned source must not be shared between goroutines.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
