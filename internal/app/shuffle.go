package app

import "math/rand"

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is left untouched.
func Shuffle[T any](items []T, rnd *rand.Rand) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
