package bitsieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiReporter(t *testing.T) {
	a := &recorder{}
	b := &recorder{}
	var plain []uint32

	r := MultiReporter(a, nil, b, ReporterFuncs{
		Prime: func(p uint32) { plain = append(plain, p) },
	})

	_, err := Sieve(context.Background(), 12, r)
	require.NoError(t, err)

	want := []uint32{2, 3, 5, 7, 11}
	assert.Equal(t, want, a.primes)
	assert.Equal(t, want, b.primes)
	assert.Equal(t, want, plain)

	// Cycle start is forwarded to reporters that implement it.
	assert.Equal(t, []uint32{12}, a.started)
	assert.Equal(t, []uint32{12}, b.started)
	assert.Equal(t, [][2]uint32{{5, 12}}, a.summaries)
}

func TestReporterFuncs_NilFields(t *testing.T) {
	assert.NotPanics(t, func() {
		ReporterFuncs{}.OnPrime(2)
		ReporterFuncs{}.OnSummary(1, 3)
		Discard.OnPrime(2)
	})
}

func TestReporter_SummaryAfterPrimes(t *testing.T) {
	var events []string
	r := ReporterFuncs{
		Prime:   func(uint32) { events = append(events, "prime") },
		Summary: func(uint32, uint32) { events = append(events, "summary") },
	}

	_, err := Sieve(context.Background(), 8, r)
	require.NoError(t, err)

	assert.Equal(t, []string{"prime", "prime", "prime", "prime", "summary"}, events)
}
