package driver

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/bitsieve"
)

// Color names an indicator.
type Color string

const (
	Red   Color = "red"
	Blue  Color = "blue"
	Green Color = "green"
)

// DefaultSequence is the pulse order after every cycle.
var DefaultSequence = []Color{Red, Blue, Green}

// Indicator switches a colored signal on or off.
type Indicator interface {
	Set(ctx context.Context, c Color, on bool) error
}

// IndicatorFunc adapts a function to the Indicator interface.
type IndicatorFunc func(ctx context.Context, c Color, on bool) error

// Set implements Indicator.
func (f IndicatorFunc) Set(ctx context.Context, c Color, on bool) error {
	return f(ctx, c, on)
}

// Nop is an Indicator that does nothing.
var Nop Indicator = IndicatorFunc(func(context.Context, Color, bool) error { return nil })

// LogIndicator reports indicator changes through a logger at Info level.
type LogIndicator struct {
	Logger *bitsieve.Logger
}

// Set implements Indicator.
func (l LogIndicator) Set(ctx context.Context, c Color, on bool) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.InfoContext(ctx, "indicator", "color", string(c), "on", on)
	return nil
}

var ansi = map[Color]string{
	Red:   "\x1b[41m",
	Blue:  "\x1b[44m",
	Green: "\x1b[42m",
}

const ansiReset = "\x1b[0m"

// WriterIndicator renders indicators as lines on a terminal.
type WriterIndicator struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewWriterIndicator creates a WriterIndicator on w. With color set the
// indicator is drawn as an ANSI background block.
func NewWriterIndicator(w io.Writer, color bool) *WriterIndicator {
	return &WriterIndicator{w: w, color: color}
}

// Set implements Indicator.
func (wi *WriterIndicator) Set(_ context.Context, c Color, on bool) error {
	wi.mu.Lock()
	defer wi.mu.Unlock()

	state := "off"
	if on {
		state = "on"
	}

	var err error
	if code, ok := ansi[c]; ok && wi.color && on {
		_, err = fmt.Fprintf(wi.w, "\n%s  %s %s %s", code, ansiReset, c, state)
	} else {
		_, err = fmt.Fprintf(wi.w, "\n[%s %s]", c, state)
	}
	return err
}

// Indicators fans Set out to every indicator and returns the first error.
func Indicators(inds ...Indicator) Indicator {
	return IndicatorFunc(func(ctx context.Context, c Color, on bool) error {
		var first error
		for _, ind := range inds {
			if ind == nil {
				continue
			}
			if err := ind.Set(ctx, c, on); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
