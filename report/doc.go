// Package report provides ready-made bitsieve.Reporter implementations.
//
// # Writer
//
// Writer renders a cycle onto an io.Writer, either as the classic serial
// console text
//
//	\n\nHunting for Primes:\n
//	2 3 5 7 ...
//	\n\nFound 1229 primes between 0 and 10000
//
// or as JSON lines (one record per event). The stream can be compressed with
// zstd or lz4 and throttled to a serial baud rate:
//
//	w, err := report.NewWriter(os.Stdout,
//	    report.WithFormat(report.FormatText),
//	    report.WithBaudRate(ctx, 115200),
//	)
//	if err != nil { ... }
//	defer w.Close()
//
// Reporter callbacks cannot return errors, so Writer latches the first write
// error and returns it from Err and Close.
//
// # Collector
//
// Collector stores the reported primes of the latest cycle in a roaring
// bitmap, for verification and for comparing cycles.
package report
