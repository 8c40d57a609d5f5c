// Package testutil provides testing utilities for bitsieve.
//
// This package is intended for use in tests and benchmarks only.
// It provides an independent trial-division reference for primes, the known
// prime-counting values used as fixed expectations, and a seeded RNG for
// picking bounds.
//
// # Reference Primes
//
//	want := testutil.Primes(30) // [2 3 5 7 11 13 17 19 23 29]
//
// # Known Counts
//
//	testutil.PrimeCounts[10000] // 1229
//
// # Random Bounds
//
//	rng := testutil.NewRNG(seed)
//	bound := rng.Bound(2, 5000)
package testutil
