package bitsieve

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/bitsieve/internal/bitset"
	"github.com/hupe1980/bitsieve/resource"
)

// DefaultBound is the exclusive upper limit of the reference configuration.
const DefaultBound uint32 = 10000

// ParallelThreshold is the minimum number of multiples in one elimination
// sub-pass before it is split across workers.
const ParallelThreshold = 1 << 15

// Summary describes one completed cycle.
type Summary struct {
	// Count is the number of primes strictly below Bound.
	Count uint32
	// Bound is the exclusive upper limit of the cycle.
	Bound uint32
	// Clears is the number of bit clears issued during elimination.
	Clears uint64
	// Cycle is the 1-based sequence number of the cycle on its engine.
	Cycle uint64
	// Elapsed is the wall time of reset, scan and reporting.
	Elapsed time.Duration
}

// Engine runs the bit-packed Sieve of Eratosthenes over a fixed bound.
//
// An Engine exclusively owns its storage. Run may be called any number of
// times; each call is a full cycle (reset, scan, report). Concurrent Run calls
// on the same Engine are serialized.
type Engine struct {
	mu      sync.Mutex
	set     *bitset.Set
	bound   uint32
	opts    options
	storage int64
	cycles  uint64
	closed  bool
}

// New creates an Engine for primes strictly below bound.
//
// The storage is sized once here (ceil(capacity/32) 32-bit words, where
// capacity defaults to bound) and never grows.
func New(bound uint32, optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	capacity := opts.capacity
	if capacity == 0 {
		capacity = bound
	}
	if bound < 2 {
		return nil, translateError(bitset.ErrBoundTooSmall, bound, capacity)
	}
	if bound > capacity {
		return nil, translateError(bitset.ErrCapacityExceeded, bound, capacity)
	}

	storage := bitset.StorageBytes(capacity)
	if err := opts.resources.AcquireMemory(storage); err != nil {
		return nil, translateError(err, bound, capacity)
	}

	var (
		set *bitset.Set
		err error
	)
	if opts.heapStorage {
		set, err = bitset.New(capacity)
	} else {
		set, err = bitset.NewMapped(capacity)
	}
	if err != nil {
		opts.resources.ReleaseMemory(storage)
		return nil, translateError(err, bound, capacity)
	}

	return &Engine{
		set:     set,
		bound:   bound,
		opts:    opts,
		storage: storage,
	}, nil
}

// Bound returns the exclusive upper limit of every cycle.
func (e *Engine) Bound() uint32 {
	return e.bound
}

// Capacity returns the largest bound the storage could hold.
func (e *Engine) Capacity() uint32 {
	return e.set.Cap()
}

// Cycles returns the number of completed cycles.
func (e *Engine) Cycles() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycles
}

// Run executes one full cycle: reset the set, scan and eliminate, report
// every prime to r in increasing order, then report the summary.
//
// A cycle always runs to completion: ctx is only passed to the logger and is
// never checked during the scan or the parallel elimination.
func (e *Engine) Run(ctx context.Context, r Reporter) (Summary, error) {
	if r == nil {
		return Summary{}, ErrNilReporter
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Summary{}, ErrClosed
	}

	start := time.Now()
	if err := e.set.Reset(e.bound); err != nil {
		err = translateError(err, e.bound, e.set.Cap())
		e.opts.logger.LogCycle(ctx, Summary{Bound: e.bound}, err)
		return Summary{}, err
	}

	if cs, ok := r.(CycleStarter); ok {
		cs.OnCycleStart(e.bound)
	}

	count, clears := e.scan(r)
	r.OnSummary(count, e.bound)

	e.cycles++
	s := Summary{
		Count:   count,
		Bound:   e.bound,
		Clears:  clears,
		Cycle:   e.cycles,
		Elapsed: time.Since(start),
	}

	e.opts.metricsCollector.RecordCycle(s.Bound, s.Count, s.Clears, s.Elapsed)
	e.opts.logger.LogCycle(ctx, s, nil)

	return s, nil
}

// scan visits every index in [2, bound) in increasing order. A still-set bit
// is a prime: it is reported, counted and its multiples are eliminated before
// the scan moves on.
func (e *Engine) scan(r Reporter) (count uint32, clears uint64) {
	for n := uint32(2); n < e.bound; n++ {
		if !e.set.Test(n) {
			continue
		}
		r.OnPrime(n)
		count++
		clears += e.eliminate(n)
	}
	return count, clears
}

// eliminate clears n*k for k = 2, 3, ... while n*k < bound.
//
// k never exceeds (bound-1)/n, so every product is at most bound-1 and the
// multiplication cannot wrap in 32 bits.
func (e *Engine) eliminate(n uint32) uint64 {
	maxK := maxMultiplier(n, e.bound)
	if maxK < 2 {
		return 0
	}

	multiples := uint64(maxK - 1)
	if e.opts.workers > 1 && multiples >= ParallelThreshold {
		e.eliminateParallel(n, maxK)
		return multiples
	}

	clearMultiples(e.set, n, 2, maxK)
	return multiples
}

// eliminateParallel splits k in [2, maxK] into contiguous ranges. Ranges for
// which a worker slot is free run on their own goroutine, the rest inline.
// Bits of one word may be cleared by several goroutines at once; Clear is a
// single atomic AND so no clear is lost.
func (e *Engine) eliminateParallel(n, maxK uint32) {
	workers := uint32(e.opts.workers) //nolint:gosec // bounded by WithWorkers
	span := (maxK - 1 + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := uint32(2); ; {
		hi := maxK
		if maxK-lo >= span {
			hi = lo + span - 1
		}

		from, to := lo, hi
		if acquireWorker(e.opts.resources) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer e.opts.resources.ReleaseWorker()
				clearMultiples(e.set, n, from, to)
			}()
		} else {
			clearMultiples(e.set, n, from, to)
		}

		if hi == maxK {
			break
		}
		lo = hi + 1
	}
	wg.Wait()
}

// maxMultiplier returns the largest k with n*k < bound.
func maxMultiplier(n, bound uint32) uint32 {
	return (bound - 1) / n
}

func acquireWorker(rc *resource.Controller) bool {
	return rc != nil && rc.TryAcquireWorker()
}

func clearMultiples(set *bitset.Set, n, fromK, toK uint32) {
	for k := fromK; k <= toK; k++ {
		set.Clear(n * k)
	}
}

// Close releases the storage. It is idempotent.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	err := e.set.Close()
	e.opts.resources.ReleaseMemory(e.storage)
	return err
}

// Sieve runs a single cycle on a temporary engine and releases it.
func Sieve(ctx context.Context, bound uint32, r Reporter, optFns ...Option) (Summary, error) {
	e, err := New(bound, optFns...)
	if err != nil {
		return Summary{}, err
	}
	defer e.Close()

	return e.Run(ctx, r)
}
