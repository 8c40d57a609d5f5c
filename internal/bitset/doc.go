// Package bitset provides the fixed-capacity, bit-packed candidate set used by the sieve.
//
// Architecture:
//   - 32-bit words: bit i lives in word i>>5 at offset i&31
//   - Fixed capacity: storage is sized once at construction and never grown
//   - Monotonic: after Reset, bits can only be cleared, never set
//   - Single-bit clears: Clear is one atomic AND with the inverted bit mask,
//     so concurrent clears of different bits in the same word never lose updates
//
// Storage comes either from the Go heap (New) or from an anonymous mapping
// outside the garbage-collected heap (NewMapped).
package bitset
