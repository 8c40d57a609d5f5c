package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitsieve"
)

func newTextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func TestWriterIndicator(t *testing.T) {
	var buf bytes.Buffer
	wi := NewWriterIndicator(&buf, false)

	require.NoError(t, wi.Set(context.Background(), Red, true))
	require.NoError(t, wi.Set(context.Background(), Red, false))
	assert.Equal(t, "\n[red on]\n[red off]", buf.String())

	buf.Reset()
	wi = NewWriterIndicator(&buf, true)
	require.NoError(t, wi.Set(context.Background(), Blue, true))
	require.NoError(t, wi.Set(context.Background(), Blue, false))
	assert.Equal(t, "\n\x1b[44m  \x1b[0m blue on\n[blue off]", buf.String())
}

func TestLogIndicator(t *testing.T) {
	var buf bytes.Buffer
	li := LogIndicator{Logger: bitsieve.NewLogger(newTextHandler(&buf))}

	require.NoError(t, li.Set(context.Background(), Green, true))
	assert.Contains(t, buf.String(), "color=green")
	assert.Contains(t, buf.String(), "on=true")

	assert.NoError(t, LogIndicator{}.Set(context.Background(), Green, true))
}

func TestIndicators(t *testing.T) {
	boom := errors.New("boom")

	var calls []string
	first := IndicatorFunc(func(_ context.Context, c Color, _ bool) error {
		calls = append(calls, "first "+string(c))
		return boom
	})
	second := IndicatorFunc(func(_ context.Context, c Color, _ bool) error {
		calls = append(calls, "second "+string(c))
		return nil
	})

	err := Indicators(first, nil, second).Set(context.Background(), Red, true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first red", "second red"}, calls)

	assert.NoError(t, Nop.Set(context.Background(), Red, true))
}
