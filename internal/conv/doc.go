// Package conv provides safe integer type conversion utilities.
//
// The sieve indexes numbers with uint32, while configuration arrives as int or
// int64. These helpers reject values that would wrap instead of silently
// truncating them into a different bound.
package conv
