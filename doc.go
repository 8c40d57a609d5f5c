// Package bitsieve finds every prime below a fixed bound with a bit-packed
// Sieve of Eratosthenes.
//
// The engine owns a fixed block of 32-bit words, one bit per integer. Each
// cycle resets the block (0 and 1 cleared, everything else set), scans it in
// increasing order and, whenever a still-set bit is found, reports it as a
// prime and clears every multiple 2n, 3n, ... below the bound. Bits are only
// ever cleared during a cycle, and every clear is a single atomic AND on the
// containing word, so neighbouring bits are never disturbed.
//
// # Quick Start
//
//	ctx := context.Background()
//	e, err := bitsieve.New(bitsieve.DefaultBound)
//	if err != nil {
//	    panic(err)
//	}
//	defer e.Close()
//
//	summary, err := e.Run(ctx, bitsieve.ReporterFuncs{
//	    Prime: func(p uint32) { fmt.Print(p, " ") },
//	})
//	fmt.Println(summary.Count) // 1229
//
// # Reporting
//
// A Reporter receives each prime synchronously, in strictly increasing order,
// followed by exactly one summary. Ready-made reporters (console text, JSON
// lines, compressed streams, a roaring-bitmap collector) live in the report
// package; the driver package repeats cycles and pulses indicators between
// them.
//
// # Storage
//
// By default the words live in an anonymous memory mapping outside the Go
// heap; WithHeapStorage keeps them on the heap. WithCapacity reserves room for
// a larger bound than the one being sieved, and WithResourceController shares
// a memory budget and worker slots across engines.
//
// # Parallel Elimination
//
// WithWorkers(n) splits large elimination sub-passes across goroutines. The
// scan itself stays sequential, so the reporting order is unaffected.
package bitsieve
