// Package mmap provides fixed, off-heap memory regions for sieve storage.
//
// # Overview
//
// A sieve owns one block of words for its whole lifetime. The block is
// obtained once, never grown, and released explicitly. Anonymous mappings
// keep that block outside the Go garbage collector, which matches the
// "fixed storage, no allocation during a run" model of the engine.
//
// # Usage
//
//	m, err := mmap.MapAnon(4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	words := m.Uint32s()
//	m.Advise(mmap.AccessWillNeed)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON and madvise(2) hints
//   - Windows: VirtualAlloc/VirtualFree (Advise is a no-op)
//   - Other platforms: a heap-backed slice with the same API
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure
// no goroutine touches the returned slices after Close returns.
package mmap
