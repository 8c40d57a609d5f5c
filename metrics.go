package bitsieve

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    cycles   prometheus.Counter
//	    duration prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCycle(bound, primes uint32, clears uint64, d time.Duration) {
//	    p.cycles.Inc()
//	    p.duration.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordCycle is called after each completed sieve cycle.
	// primes is the reported count, clears the number of bit clears issued.
	RecordCycle(bound, primes uint32, clears uint64, duration time.Duration)

	// RecordPulse is called after each indicator pulse between cycles.
	RecordPulse(indicator string, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCycle(uint32, uint32, uint64, time.Duration) {}
func (NoopMetricsCollector) RecordPulse(string, error)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CycleCount      atomic.Int64
	CycleTotalNanos atomic.Int64
	PrimesReported  atomic.Int64
	BitsCleared     atomic.Int64
	LastPrimeCount  atomic.Int64
	PulseCount      atomic.Int64
	PulseErrors     atomic.Int64
}

// RecordCycle implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCycle(_, primes uint32, clears uint64, duration time.Duration) {
	b.CycleCount.Add(1)
	b.CycleTotalNanos.Add(duration.Nanoseconds())
	b.PrimesReported.Add(int64(primes))
	b.BitsCleared.Add(int64(clears)) //nolint:gosec // clears per cycle are bounded by 2^32 * ln(2^32)
	b.LastPrimeCount.Store(int64(primes))
}

// RecordPulse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPulse(_ string, err error) {
	b.PulseCount.Add(1)
	if err != nil {
		b.PulseErrors.Add(1)
	}
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CycleCount:     b.CycleCount.Load(),
		CycleAvgNanos:  b.getAvgCycleNanos(),
		PrimesReported: b.PrimesReported.Load(),
		BitsCleared:    b.BitsCleared.Load(),
		LastPrimeCount: b.LastPrimeCount.Load(),
		PulseCount:     b.PulseCount.Load(),
		PulseErrors:    b.PulseErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgCycleNanos() int64 {
	count := b.CycleCount.Load()
	if count == 0 {
		return 0
	}
	return b.CycleTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CycleCount     int64
	CycleAvgNanos  int64
	PrimesReported int64
	BitsCleared    int64
	LastPrimeCount int64
	PulseCount     int64
	PulseErrors    int64
}
