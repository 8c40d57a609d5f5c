package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/bitsieve/codec"
	"github.com/hupe1980/bitsieve/resource"
)

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("report: writer is closed")

// BitsPerByte is the serial frame size of one byte on an 8N1 line.
const BitsPerByte = 10

const defaultBufferSize = 4096

var newline = []byte{'\n'}

type writerOptions struct {
	format      Format
	codec       codec.Codec
	compression Compression
	ctx         context.Context
	rc          *resource.Controller
	bufferSize  int
}

// Option configures a Writer.
type Option func(*writerOptions)

// WithFormat selects the output format (default FormatText).
func WithFormat(f Format) Option {
	return func(o *writerOptions) {
		o.format = f
	}
}

// WithCodec selects the codec for FormatJSONL (default codec.Default).
func WithCodec(c codec.Codec) Option {
	return func(o *writerOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression wraps the output stream in a compressed frame.
func WithCompression(c Compression) Option {
	return func(o *writerOptions) {
		o.compression = c
	}
}

// WithBaudRate throttles the output to what a serial line at baud can carry.
// ctx bounds how long a write may wait for bandwidth. baud <= 0 disables throttling.
func WithBaudRate(ctx context.Context, baud int) Option {
	return func(o *writerOptions) {
		if baud <= 0 {
			o.rc = nil
			return
		}
		o.ctx = ctx
		o.rc = resource.NewController(resource.Config{
			IOLimitBytesPerSec: BaudBytesPerSec(baud),
		})
	}
}

// BaudBytesPerSec returns the bytes per second a serial line at baud carries.
// It is zero for baud <= 0 and at least 1 otherwise.
func BaudBytesPerSec(baud int) int64 {
	if baud <= 0 {
		return 0
	}
	return int64(max(baud/BitsPerByte, 1))
}

// WithRateLimit throttles the output with the IO budget of a shared controller.
// A nil controller or one without an IO limit leaves the output unthrottled.
func WithRateLimit(ctx context.Context, rc *resource.Controller) Option {
	return func(o *writerOptions) {
		o.ctx = ctx
		o.rc = rc
	}
}

// WithBufferSize sets the size of the write buffer flushed at every summary.
func WithBufferSize(n int) Option {
	return func(o *writerOptions) {
		o.bufferSize = n
	}
}

// flushCloser is satisfied by both compressors.
type flushCloser interface {
	io.WriteCloser
	Flush() error
}

// Writer is a Reporter that renders cycles onto an io.Writer.
// It is safe to call Err and Close from another goroutine.
type Writer struct {
	mu       sync.Mutex
	buf      *bufio.Writer
	enc      flushCloser      // nil without compression
	throttle *throttledWriter // nil without a rate limit
	opts     writerOptions
	scratch  []byte
	err      error
	closed   bool
}

// NewWriter creates a Writer on top of w. Close flushes and finishes the
// compressed frame but never closes w.
func NewWriter(w io.Writer, optFns ...Option) (*Writer, error) {
	opts := writerOptions{
		format:      FormatText,
		codec:       codec.Default,
		compression: CompressionNone,
		ctx:         context.Background(),
		bufferSize:  defaultBufferSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if _, err := ParseFormat(string(opts.format)); err != nil {
		return nil, err
	}

	rw := &Writer{opts: opts}

	out := w
	if opts.rc != nil && opts.rc.IOBurst() > 0 {
		rw.throttle = &throttledWriter{
			limited: resource.NewRateLimitedWriter(opts.ctx, w, opts.rc),
			direct:  w,
		}
		out = rw.throttle
	}

	switch opts.compression {
	case CompressionNone, "":
	case CompressionZstd:
		enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("report: zstd encoder: %w", err)
		}
		rw.enc = enc
		out = enc
	case CompressionLZ4:
		enc := lz4.NewWriter(out)
		rw.enc = enc
		out = enc
	default:
		return nil, fmt.Errorf("report: unknown compression %q", opts.compression)
	}

	rw.buf = bufio.NewWriterSize(out, max(opts.bufferSize, 16))

	return rw, nil
}

// OnCycleStart implements bitsieve.CycleStarter.
func (w *Writer) OnCycleStart(bound uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.format == FormatJSONL {
		w.writeRecord(StartRecord{Event: EventStart, Bound: bound})
		return
	}
	w.writeString("\n\nHunting for Primes:\n")
}

// OnPrime implements bitsieve.Reporter.
func (w *Writer) OnPrime(value uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.format == FormatJSONL {
		w.writeRecord(PrimeRecord{Event: EventPrime, Value: value})
		return
	}
	w.scratch = strconv.AppendUint(w.scratch[:0], uint64(value), 10)
	w.scratch = append(w.scratch, ' ')
	w.write(w.scratch)
}

// OnSummary implements bitsieve.Reporter. The summary ends the cycle, so the
// buffered output is flushed through to the destination.
func (w *Writer) OnSummary(count, bound uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.format == FormatJSONL {
		w.writeRecord(SummaryRecord{Event: EventSummary, Count: count, Bound: bound})
	} else {
		w.writeString(fmt.Sprintf("\n\nFound %d primes between 0 and %d", count, bound))
	}
	w.flush()
}

// Flush pushes buffered output (and a compressed block) to the destination.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flush()
	return w.err
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close flushes the output and finishes the compressed frame. It is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.err
	}

	// Once the rate limit's context is done the remaining output is written
	// unthrottled, and the frame trailer always is, so a compressed stream
	// is terminated even on shutdown.
	if w.throttle != nil && w.opts.ctx.Err() != nil {
		w.throttle.bypass = true
	}
	if w.err == nil {
		if err := w.buf.Flush(); err != nil {
			w.err = err
		}
	}
	if w.throttle != nil {
		w.throttle.bypass = true
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && w.err == nil {
			w.err = err
		}
	}
	w.closed = true

	return w.err
}

func (w *Writer) flush() {
	if w.err != nil || w.closed {
		return
	}
	if err := w.buf.Flush(); err != nil {
		w.err = err
		return
	}
	if w.enc != nil {
		if err := w.enc.Flush(); err != nil {
			w.err = err
		}
	}
}

func (w *Writer) writeRecord(v any) {
	if w.err != nil {
		return
	}
	b, err := w.opts.codec.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("report: marshal %T: %w", v, err)
		return
	}
	w.write(b)
	w.write(newline)
}

func (w *Writer) writeString(s string) {
	w.write([]byte(s))
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	if w.closed {
		w.err = ErrClosed
		return
	}
	if _, err := w.buf.Write(p); err != nil {
		w.err = err
	}
}

// throttledWriter sends writes through the rate limiter until bypass is set.
// It is only used under the Writer's mutex.
type throttledWriter struct {
	limited io.Writer
	direct  io.Writer
	bypass  bool
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	if t.bypass {
		return t.direct.Write(p)
	}
	return t.limited.Write(p)
}
