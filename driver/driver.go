package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/bitsieve"
	"github.com/hupe1980/bitsieve/report"
)

// DefaultPulseDuration is how long each indicator stays on.
const DefaultPulseDuration = time.Second

var (
	// ErrNilEngine is returned when a Driver is built without an engine.
	ErrNilEngine = errors.New("driver: engine is nil")

	// ErrVerifyMismatch is returned when a cycle disagrees with the first cycle.
	ErrVerifyMismatch = errors.New("driver: cycle output differs from first cycle")
)

// Engine is the part of bitsieve.Engine a Driver uses.
type Engine interface {
	Run(ctx context.Context, r bitsieve.Reporter) (bitsieve.Summary, error)
}

// errReporter is implemented by reporters that latch write errors.
type errReporter interface {
	Err() error
}

// Stats summarizes a Driver run.
type Stats struct {
	Cycles uint64
	Pulses uint64
	Last   bitsieve.Summary
}

type options struct {
	cycles    uint64
	pulse     time.Duration
	sequence  []Color
	indicator Indicator
	verify    bool
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *bitsieve.Logger
	metrics   bitsieve.MetricsCollector
}

// Option configures a Driver.
type Option func(*options)

// WithCycles limits the number of cycles. Zero repeats until the context is done.
func WithCycles(n uint64) Option {
	return func(o *options) {
		o.cycles = n
	}
}

// WithPulseDuration sets how long each indicator stays on.
func WithPulseDuration(d time.Duration) Option {
	return func(o *options) {
		o.pulse = max(d, 0)
	}
}

// WithSequence replaces the pulse order.
func WithSequence(colors ...Color) Option {
	return func(o *options) {
		o.sequence = append([]Color(nil), colors...)
	}
}

// WithIndicator sets the indicator that is pulsed between cycles.
func WithIndicator(ind Indicator) Option {
	return func(o *options) {
		if ind == nil {
			ind = Nop
		}
		o.indicator = ind
	}
}

// WithVerify compares every cycle's primes against the first cycle and
// stops with ErrVerifyMismatch on any difference.
func WithVerify(enabled bool) Option {
	return func(o *options) {
		o.verify = enabled
	}
}

// WithLogger sets the logger for cycle and pulse events.
func WithLogger(logger *bitsieve.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = bitsieve.NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector sets the collector for pulse metrics.
func WithMetricsCollector(mc bitsieve.MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = bitsieve.NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// Driver repeats sieve cycles on one engine.
type Driver struct {
	engine   Engine
	reporter bitsieve.Reporter
	opts     options
}

// New creates a Driver reporting every cycle of engine to r.
func New(engine Engine, r bitsieve.Reporter, optFns ...Option) (*Driver, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if r == nil {
		return nil, bitsieve.ErrNilReporter
	}

	opts := options{
		pulse:     DefaultPulseDuration,
		sequence:  DefaultSequence,
		indicator: Nop,
		sleep:     sleep,
		logger:    bitsieve.NoopLogger(),
		metrics:   bitsieve.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	return &Driver{
		engine:   engine,
		reporter: r,
		opts:     opts,
	}, nil
}

// Run executes cycles until the configured count is reached or ctx is done.
// When ctx ends the run, the returned error is ctx.Err().
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	var (
		stats    Stats
		baseline *report.Collector
		current  *report.Collector
	)

	for d.opts.cycles == 0 || stats.Cycles < d.opts.cycles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		r := d.reporter
		if d.opts.verify {
			current = report.NewCollector()
			r = bitsieve.MultiReporter(d.reporter, current)
		}

		sum, err := d.engine.Run(ctx, r)
		if err != nil {
			return stats, err
		}
		stats.Cycles++
		stats.Last = sum

		if er, ok := d.reporter.(errReporter); ok {
			if err := er.Err(); err != nil {
				return stats, fmt.Errorf("driver: reporter: %w", err)
			}
		}

		if d.opts.verify {
			if baseline == nil {
				baseline = current
			} else if !baseline.Equal(current) {
				missing, extra := current.Diff(baseline.Bitmap())
				return stats, fmt.Errorf("%w: cycle %d missing %v extra %v",
					ErrVerifyMismatch, sum.Cycle, missing, extra)
			}
		}

		d.opts.logger.InfoContext(ctx, "sieve cycle reported",
			"cycle", sum.Cycle,
			"primes", sum.Count,
			"bound", sum.Bound,
			"elapsed", sum.Elapsed,
		)

		n, err := d.pulse(ctx)
		stats.Pulses += n
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// pulse runs the indicator sequence once. Indicator failures are logged and
// counted but do not stop the driver; only ctx does.
func (d *Driver) pulse(ctx context.Context) (uint64, error) {
	var n uint64
	for _, c := range d.opts.sequence {
		err := d.opts.indicator.Set(ctx, c, true)

		waitErr := d.opts.sleep(ctx, d.opts.pulse)

		// The indicator is switched off even when ctx ended the pulse.
		if offErr := d.opts.indicator.Set(context.WithoutCancel(ctx), c, false); err == nil {
			err = offErr
		}

		n++
		d.opts.metrics.RecordPulse(string(c), err)
		d.opts.logger.LogPulse(ctx, string(c), err)

		if waitErr != nil {
			return n, waitErr
		}
	}
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
