package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitsieve"
	"github.com/hupe1980/bitsieve/report"
)

// trace records reporter and indicator events in one ordered log.
type trace struct {
	events []string
}

func (t *trace) OnCycleStart(bound uint32)     { t.add("start %d", bound) }
func (t *trace) OnPrime(v uint32)              { t.add("prime %d", v) }
func (t *trace) OnSummary(count, bound uint32) { t.add("summary %d %d", count, bound) }

func (t *trace) Set(_ context.Context, c Color, on bool) error {
	if on {
		t.add("%s on", c)
	} else {
		t.add("%s off", c)
	}
	return nil
}

func (t *trace) add(format string, args ...any) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func newEngine(t *testing.T, bound uint32) *bitsieve.Engine {
	t.Helper()
	e, err := bitsieve.New(bound, bitsieve.WithHeapStorage())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func noSleep(d *Driver) *[]time.Duration {
	var slept []time.Duration
	d.opts.sleep = func(ctx context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return ctx.Err()
	}
	return &slept
}

func TestDriver_CycleProtocol(t *testing.T) {
	tr := &trace{}
	d, err := New(newEngine(t, 10), tr, WithIndicator(tr), WithCycles(2))
	require.NoError(t, err)
	slept := noSleep(d)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)

	cycle := []string{
		"start 10",
		"prime 2", "prime 3", "prime 5", "prime 7",
		"summary 4 10",
		"red on", "red off",
		"blue on", "blue off",
		"green on", "green off",
	}
	assert.Equal(t, append(append([]string{}, cycle...), cycle...), tr.events)

	assert.Equal(t, uint64(2), stats.Cycles)
	assert.Equal(t, uint64(6), stats.Pulses)
	assert.Equal(t, uint32(4), stats.Last.Count)
	assert.Equal(t, uint64(2), stats.Last.Cycle)

	require.Len(t, *slept, 6)
	for _, dur := range *slept {
		assert.Equal(t, DefaultPulseDuration, dur)
	}
}

func TestDriver_Sequence(t *testing.T) {
	tr := &trace{}
	d, err := New(newEngine(t, 3), bitsieve.Discard,
		WithIndicator(tr),
		WithSequence(Green),
		WithPulseDuration(5*time.Millisecond),
		WithCycles(1),
	)
	require.NoError(t, err)
	slept := noSleep(d)

	_, err = d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"green on", "green off"}, tr.events)
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, *slept)
}

func TestDriver_ForeverUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pulses := 0
	ind := IndicatorFunc(func(_ context.Context, c Color, on bool) error {
		if on {
			pulses++
			// Stop after the fourth cycle's last pulse.
			if pulses == 12 {
				cancel()
			}
		}
		return nil
	})

	d, err := New(newEngine(t, 100), bitsieve.Discard, WithIndicator(ind))
	require.NoError(t, err)
	noSleep(d)

	stats, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(4), stats.Cycles)
	assert.Equal(t, uint64(12), stats.Pulses)
}

func TestDriver_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &trace{}
	d, err := New(newEngine(t, 10), tr, WithCycles(3))
	require.NoError(t, err)

	stats, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Cycles)
	assert.Empty(t, tr.events)
}

func TestDriver_CancelDuringPulseSwitchesOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &trace{}
	ind := IndicatorFunc(func(ctx context.Context, c Color, on bool) error {
		if on {
			cancel()
		}
		return tr.Set(ctx, c, on)
	})

	d, err := New(newEngine(t, 10), bitsieve.Discard, WithIndicator(ind), WithPulseDuration(time.Hour))
	require.NoError(t, err)

	start := time.Now()
	stats, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, []string{"red on", "red off"}, tr.events)
	assert.Equal(t, uint64(1), stats.Pulses)
}

func TestDriver_IndicatorErrorsAreNotFatal(t *testing.T) {
	boom := errors.New("led stuck")
	ind := IndicatorFunc(func(context.Context, Color, bool) error { return boom })

	mc := &bitsieve.BasicMetricsCollector{}
	d, err := New(newEngine(t, 10), bitsieve.Discard,
		WithIndicator(ind),
		WithMetricsCollector(mc),
		WithCycles(2),
	)
	require.NoError(t, err)
	noSleep(d)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Cycles)

	s := mc.GetStats()
	assert.Equal(t, int64(6), s.PulseCount)
	assert.Equal(t, int64(6), s.PulseErrors)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("serial port gone") }

func TestDriver_SurfacesReporterError(t *testing.T) {
	w, err := report.NewWriter(failingWriter{})
	require.NoError(t, err)

	d, err := New(newEngine(t, 30), w, WithCycles(5))
	require.NoError(t, err)
	noSleep(d)

	stats, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial port gone")
	assert.Equal(t, uint64(1), stats.Cycles)
	assert.Zero(t, stats.Pulses)
}

type driftingEngine struct {
	runs int
}

func (f *driftingEngine) Run(_ context.Context, r bitsieve.Reporter) (bitsieve.Summary, error) {
	f.runs++
	primes := []uint32{2, 3, 5, 7}
	if f.runs > 1 {
		primes = []uint32{2, 3, 5, 9}
	}
	if cs, ok := r.(bitsieve.CycleStarter); ok {
		cs.OnCycleStart(10)
	}
	for _, p := range primes {
		r.OnPrime(p)
	}
	r.OnSummary(4, 10)
	return bitsieve.Summary{Count: 4, Bound: 10, Cycle: uint64(f.runs)}, nil
}

func TestDriver_Verify(t *testing.T) {
	t.Run("stable", func(t *testing.T) {
		d, err := New(newEngine(t, 10000), bitsieve.Discard, WithVerify(true), WithCycles(3))
		require.NoError(t, err)
		noSleep(d)

		stats, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(3), stats.Cycles)
		assert.Equal(t, uint32(1229), stats.Last.Count)
	})

	t.Run("mismatch", func(t *testing.T) {
		d, err := New(&driftingEngine{}, bitsieve.Discard, WithVerify(true), WithCycles(3))
		require.NoError(t, err)
		noSleep(d)

		stats, err := d.Run(context.Background())
		require.ErrorIs(t, err, ErrVerifyMismatch)
		assert.Contains(t, err.Error(), "missing [7] extra [9]")
		assert.Equal(t, uint64(2), stats.Cycles)
	})
}

func TestDriver_PropagatesEngineError(t *testing.T) {
	e, err := bitsieve.New(10, bitsieve.WithHeapStorage())
	require.NoError(t, err)
	require.NoError(t, e.Close())

	d, err := New(e, bitsieve.Discard, WithCycles(1))
	require.NoError(t, err)

	_, err = d.Run(context.Background())
	assert.ErrorIs(t, err, bitsieve.ErrClosed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, bitsieve.Discard)
	assert.ErrorIs(t, err, ErrNilEngine)

	_, err = New(newEngine(t, 10), nil)
	assert.ErrorIs(t, err, bitsieve.ErrNilReporter)
}

func TestDriver_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := bitsieve.NewLogger(newTextHandler(&buf))

	d, err := New(newEngine(t, 30), bitsieve.Discard, WithLogger(logger), WithCycles(1))
	require.NoError(t, err)
	noSleep(d)

	_, err = d.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sieve cycle reported")
	assert.Contains(t, out, "primes=10")
	assert.Contains(t, out, "indicator=green")
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), 0))
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}
