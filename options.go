package bitsieve

import (
	"log/slog"

	"github.com/hupe1980/bitsieve/resource"
)

type options struct {
	capacity         uint32
	workers          int
	heapStorage      bool
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Engine construction.
type Option func(*options)

// WithCapacity sizes the storage for bounds up to capacity instead of exactly
// the engine bound. New fails with ErrCapacityExceeded when the bound is larger.
func WithCapacity(capacity uint32) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithWorkers splits large elimination sub-passes across up to n goroutines.
//
// Only sub-passes with at least ParallelThreshold multiples are split; the
// outer scan and prime reporting stay sequential, so the reported order does
// not change. n <= 1 disables parallel elimination (the default).
//
// Worker slots are taken from the resource controller (see
// WithResourceController); when none is configured the engine creates a
// private controller with n slots.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithHeapStorage keeps the bit-packed set on the Go heap instead of an
// anonymous memory mapping.
func WithHeapStorage() Option {
	return func(o *options) {
		o.heapStorage = true
	}
}

// WithResourceController shares a memory budget and worker slots between engines.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 20,
//	    MaxWorkers:       4,
//	})
//	a, _ := bitsieve.New(100000, bitsieve.WithResourceController(rc))
//	b, _ := bitsieve.New(100000, bitsieve.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring cycles.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bitsieve.BasicMetricsCollector{}
//	e, _ := bitsieve.New(10000, bitsieve.WithMetricsCollector(metrics))
//	// ... run cycles ...
//	stats := metrics.GetStats()
//	fmt.Printf("Cycles: %d, Avg latency: %dns\n", stats.CycleCount, stats.CycleAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for cycles.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bitsieve.NewJSONLogger(slog.LevelDebug)
//	e, _ := bitsieve.New(10000, bitsieve.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          1,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.workers > 1 && o.resources == nil {
		o.resources = resource.NewController(resource.Config{MaxWorkers: int64(o.workers)})
	}
	return o
}
