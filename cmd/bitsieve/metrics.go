package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// promMetrics exports engine and driver metrics to Prometheus.
type promMetrics struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	primes        prometheus.Gauge
	bound         prometheus.Gauge
	clears        prometheus.Counter
	pulses        *prometheus.CounterVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)

	return &promMetrics{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "bitsieve_cycles_total",
			Help: "Total number of completed sieve cycles",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bitsieve_cycle_duration_seconds",
			Help:    "Duration of one sieve cycle including reporting",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		primes: f.NewGauge(prometheus.GaugeOpts{
			Name: "bitsieve_primes",
			Help: "Number of primes found by the last cycle",
		}),
		bound: f.NewGauge(prometheus.GaugeOpts{
			Name: "bitsieve_bound",
			Help: "Exclusive upper limit of the last cycle",
		}),
		clears: f.NewCounter(prometheus.CounterOpts{
			Name: "bitsieve_bits_cleared_total",
			Help: "Total number of bit clears issued during elimination",
		}),
		pulses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bitsieve_indicator_pulses_total",
			Help: "Total number of indicator pulses between cycles",
		}, []string{"indicator", "status"}),
	}
}

func (m *promMetrics) RecordCycle(bound, primes uint32, clears uint64, duration time.Duration) {
	m.cycles.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.primes.Set(float64(primes))
	m.bound.Set(float64(bound))
	m.clears.Add(float64(clears))
}

func (m *promMetrics) RecordPulse(indicator string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.pulses.WithLabelValues(indicator, status).Inc()
}
