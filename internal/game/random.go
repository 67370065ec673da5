package game

import "math/rand/v2"

// Randomizer is the source of randomness for scrambling and option ordering
type Randomizer interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
}

type stdRandom struct{}

func (stdRandom) Intn(n int) int { return rand.IntN(n) }

// DefaultRandom returns an auto-seeded randomizer
func DefaultRandom() Randomizer {
	return stdRandom{}
}

// shuffle performs a Fisher-Yates shuffle in place
func shuffle[T any](rng Randomizer, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
