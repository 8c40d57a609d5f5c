package testutil

import (
	"math/rand"
	"sync"
)

// PrimeCounts maps a bound to the number of primes strictly below it.
var PrimeCounts = map[uint32]uint32{
	2:       0,
	3:       1,
	10:      4,
	30:      10,
	100:     25,
	1000:    168,
	10000:   1229,
	100000:  9592,
	1000000: 78498,
}

// IsPrime reports whether n is prime by trial division over odd divisors.
func IsPrime(n uint32) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 {
		return false
	}

	v := uint64(n)
	for i := uint64(3); i*i <= v; i += 2 {
		if v%i == 0 {
			return false
		}
	}
	return true
}

// Primes returns every prime strictly below bound, in increasing order,
// computed without any sieve.
func Primes(bound uint32) []uint32 {
	var out []uint32
	for n := uint32(2); n < bound; n++ {
		if IsPrime(n) {
			out = append(out, n)
		}
	}
	return out
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Bound returns a pseudo-random bound in [lo, hi).
func (r *RNG) Bound(lo, hi uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + uint32(r.rand.Int63n(int64(hi-lo))) //nolint:gosec // result < hi-lo
}
