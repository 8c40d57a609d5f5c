// Command bitsieve runs the bit-packed sieve in a loop and streams every
// cycle to stdout in the serial console protocol, pulsing red, blue and green
// indicators between cycles.
//
// Configuration comes from BITSIEVE_* environment variables (optionally from
// a .env file) and is overridden by command-line flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/bitsieve"
	"github.com/hupe1980/bitsieve/codec"
	"github.com/hupe1980/bitsieve/driver"
	"github.com/hupe1980/bitsieve/report"
	"github.com/hupe1980/bitsieve/resource"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "bitsieve:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := ParseFlags(&cfg, args, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(&cfg, stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := newPromMetrics(reg)

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	bound, _ := cfg.BoundValue()

	// Shared by the engine and the report writer.
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.MemoryLimit,
		MaxWorkers:         int64(cfg.Workers),
		IOLimitBytesPerSec: report.BaudBytesPerSec(cfg.BaudRate),
	})

	engineOpts := []bitsieve.Option{
		bitsieve.WithWorkers(cfg.Workers),
		bitsieve.WithResourceController(rc),
		bitsieve.WithLogger(logger),
		bitsieve.WithMetricsCollector(metrics),
	}
	if cfg.Storage == "heap" {
		engineOpts = append(engineOpts, bitsieve.WithHeapStorage())
	}

	engine, err := bitsieve.New(bound, engineOpts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	var (
		reporter bitsieve.Reporter = bitsieve.Discard
		writer   *report.Writer
	)
	if !cfg.Quiet {
		writer, err = newReportWriter(ctx, &cfg, rc, stdout)
		if err != nil {
			return err
		}
		reporter = writer
	}

	d, err := driver.New(engine, reporter,
		driver.WithCycles(cfg.Cycles),
		driver.WithPulseDuration(cfg.PulseDuration),
		driver.WithIndicator(newIndicator(&cfg, logger, stderr)),
		driver.WithVerify(cfg.Verify),
		driver.WithLogger(logger),
		driver.WithMetricsCollector(metrics),
	)
	if err != nil {
		return err
	}

	logger.Info("bitsieve starting",
		"bound", bound,
		"cycles", cfg.Cycles,
		"workers", cfg.Workers,
		"storage", cfg.Storage,
		"format", cfg.Format,
	)

	stats, runErr := d.Run(ctx)
	if isShutdown(ctx, runErr) {
		runErr = nil
	}

	if writer != nil {
		if err := writer.Close(); err != nil && runErr == nil && !isShutdown(ctx, err) {
			runErr = err
		}
	}

	logger.Info("bitsieve stopped",
		"cycles", stats.Cycles,
		"pulses", stats.Pulses,
		"primes", stats.Last.Count,
	)

	return runErr
}

func newLogger(cfg *Config, w io.Writer) *bitsieve.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return bitsieve.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return bitsieve.NewLogger(slog.NewTextHandler(w, opts))
}

// isShutdown reports whether err only says that ctx ended the run. Output
// throttled to the serial line fails with the same error when the signal
// arrives mid-cycle.
func isShutdown(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func newReportWriter(ctx context.Context, cfg *Config, rc *resource.Controller, w io.Writer) (*report.Writer, error) {
	format, _ := report.ParseFormat(cfg.Format)
	compression, _ := report.ParseCompression(cfg.Compression)
	c, _ := codec.ByName(cfg.Codec)

	return report.NewWriter(w,
		report.WithFormat(format),
		report.WithCompression(compression),
		report.WithCodec(c),
		report.WithRateLimit(ctx, rc),
	)
}

func newIndicator(cfg *Config, logger *bitsieve.Logger, w io.Writer) driver.Indicator {
	switch cfg.Indicator {
	case "log":
		return driver.LogIndicator{Logger: logger}
	case "text":
		return driver.NewWriterIndicator(w, false)
	case "ansi":
		return driver.NewWriterIndicator(w, true)
	default:
		return driver.Nop
	}
}

// serveMetrics starts the Prometheus endpoint and returns a function that
// shuts it down.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *bitsieve.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting metrics server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start metrics server", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
