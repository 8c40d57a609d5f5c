package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitsieve"
	"github.com/hupe1980/bitsieve/driver"
	"github.com/hupe1980/bitsieve/report"
	"github.com/hupe1980/bitsieve/resource"
	"github.com/hupe1980/bitsieve/testutil"
)

// consoleCycle renders the serial console output of one cycle from the
// reference primes.
func consoleCycle(bound uint32) string {
	var sb strings.Builder
	sb.WriteString("\n\nHunting for Primes:\n")
	primes := testutil.Primes(bound)
	for _, p := range primes {
		fmt.Fprintf(&sb, "%d ", p)
	}
	fmt.Fprintf(&sb, "\n\nFound %d primes between 0 and %d", len(primes), bound)
	return sb.String()
}

func TestE2E_ConsoleLoop(t *testing.T) {
	ctx := context.Background()

	e, err := bitsieve.New(bitsieve.DefaultBound)
	require.NoError(t, err)
	defer e.Close()

	var out bytes.Buffer
	w, err := report.NewWriter(&out)
	require.NoError(t, err)

	var pulses []string
	ind := driver.IndicatorFunc(func(_ context.Context, c driver.Color, on bool) error {
		if on {
			pulses = append(pulses, string(c))
		}
		return nil
	})

	d, err := driver.New(e, w,
		driver.WithCycles(3),
		driver.WithPulseDuration(0),
		driver.WithIndicator(ind),
		driver.WithVerify(true),
	)
	require.NoError(t, err)

	stats, err := d.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, uint64(3), stats.Cycles)
	assert.Equal(t, uint32(1229), stats.Last.Count)
	assert.Equal(t, strings.Repeat(consoleCycle(bitsieve.DefaultBound), 3), out.String())
	assert.Equal(t, []string{
		"red", "blue", "green",
		"red", "blue", "green",
		"red", "blue", "green",
	}, pulses)
}

func TestE2E_CompressedJSONLines(t *testing.T) {
	ctx := context.Background()
	const bound = 100000

	var out bytes.Buffer
	w, err := report.NewWriter(&out,
		report.WithFormat(report.FormatJSONL),
		report.WithCompression(report.CompressionZstd),
	)
	require.NoError(t, err)

	c := report.NewCollector()
	s, err := bitsieve.Sieve(ctx, bound, bitsieve.MultiReporter(w, c))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, uint32(9592), s.Count)

	dec, err := zstd.NewReader(&out)
	require.NoError(t, err)
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 9592+2)
	assert.Equal(t, `{"event":"start","bound":100000}`, lines[0])
	assert.Equal(t, `{"event":"prime","value":99991}`, lines[len(lines)-2])
	assert.Equal(t, `{"event":"summary","count":9592,"bound":100000}`, lines[len(lines)-1])

	missing, extra := c.Diff(roaring.BitmapOf(testutil.Primes(bound)...))
	assert.Empty(t, missing)
	assert.Empty(t, extra)
}

func TestE2E_SharedBudget(t *testing.T) {
	// Room for exactly two engines at this bound.
	const bound = 1 << 20
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 2 * bound / 8, MaxWorkers: 4})

	a, err := bitsieve.New(bound, bitsieve.WithResourceController(rc), bitsieve.WithWorkers(4))
	require.NoError(t, err)
	b, err := bitsieve.New(bound, bitsieve.WithResourceController(rc), bitsieve.WithWorkers(4))
	require.NoError(t, err)

	_, err = bitsieve.New(bound, bitsieve.WithResourceController(rc))
	require.ErrorIs(t, err, bitsieve.ErrMemoryLimitExceeded)

	ca, cb := report.NewCollector(), report.NewCollector()
	_, err = a.Run(context.Background(), ca)
	require.NoError(t, err)
	_, err = b.Run(context.Background(), cb)
	require.NoError(t, err)
	assert.True(t, ca.Equal(cb))
	assert.Equal(t, uint64(82025), ca.Cardinality())

	require.NoError(t, a.Close())
	c, err := bitsieve.New(bound, bitsieve.WithResourceController(rc))
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, c.Close())
	assert.Zero(t, rc.MemoryUsage())
}
