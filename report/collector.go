package report

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Collector is a Reporter that keeps the primes of the most recent cycle in a
// roaring bitmap. A new cycle (OnCycleStart) discards the previous one.
//
// Collector is safe for concurrent use, so a cycle can be inspected from
// another goroutine once it is complete.
type Collector struct {
	mu     sync.RWMutex
	primes *roaring.Bitmap
	count  uint32
	bound  uint32
	done   bool
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		primes: roaring.New(),
	}
}

// OnCycleStart implements bitsieve.CycleStarter.
func (c *Collector) OnCycleStart(bound uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.primes.Clear()
	c.count = 0
	c.bound = bound
	c.done = false
}

// OnPrime implements bitsieve.Reporter.
func (c *Collector) OnPrime(value uint32) {
	c.mu.Lock()
	c.primes.Add(value)
	c.mu.Unlock()
}

// OnSummary implements bitsieve.Reporter.
func (c *Collector) OnSummary(count, bound uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count = count
	c.bound = bound
	c.done = true
	c.primes.RunOptimize()
}

// Summary returns the reported count and bound. ok is false until a cycle
// has completed.
func (c *Collector) Summary() (count, bound uint32, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count, c.bound, c.done
}

// Primes returns the collected primes in increasing order.
func (c *Collector) Primes() []uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.primes.ToArray()
}

// Bitmap returns a copy of the collected primes.
func (c *Collector) Bitmap() *roaring.Bitmap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.primes.Clone()
}

// Contains reports whether value was reported as prime.
func (c *Collector) Contains(value uint32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.primes.Contains(value)
}

// Cardinality returns the number of distinct primes collected.
func (c *Collector) Cardinality() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.primes.GetCardinality()
}

// Diff compares two collections: missing holds primes in want that c lacks,
// extra holds primes in c that want lacks.
func (c *Collector) Diff(want *roaring.Bitmap) (missing, extra []uint32) {
	got := c.Bitmap()
	return roaring.AndNot(want, got).ToArray(), roaring.AndNot(got, want).ToArray()
}

// Equal reports whether both collectors hold the same primes and summary.
func (c *Collector) Equal(other *Collector) bool {
	if c == other {
		return true
	}

	oc, ob, odone := other.Summary()
	obm := other.Bitmap()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.done == odone && c.count == oc && c.bound == ob && c.primes.Equals(obm)
}
