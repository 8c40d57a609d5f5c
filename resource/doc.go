// Package resource implements the Controller for shared limits across sieve engines.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Budget for bit-packed storage across engines (non-blocking, fail-fast)
//   - Concurrency: Worker slots for parallel elimination sub-passes
//   - IO: Token-bucket throttling of report output (serial line emulation)
//
// # Memory Management
//
// Engines reserve their storage size once at construction and release it on
// Close. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 20,
//	})
//
//	if err := rc.AcquireMemory(1252); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(1252)
//
// # Worker Limits
//
// Elimination sub-passes try to take a worker slot and fall back to running
// inline when none is free, so a scan never waits on another engine:
//
//	if rc.TryAcquireWorker() {
//	    go func() { defer rc.ReleaseWorker(); ... }()
//	}
//
// # IO Rate Limiting
//
// A 115200 baud 8N1 line carries 11520 bytes per second:
//
//	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 115200 / 10})
//	w := resource.NewRateLimitedWriter(ctx, os.Stdout, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
