package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/bitsieve/codec"
	"github.com/hupe1980/bitsieve/internal/conv"
	"github.com/hupe1980/bitsieve/report"
)

// envPrefix prefixes every environment variable, e.g. BITSIEVE_BOUND.
const envPrefix = "BITSIEVE"

// Config validation errors
var (
	ErrInvalidBound         = errors.New("bound must be between 2 and 4294967295")
	ErrInvalidPulseDuration = errors.New("pulse_duration cannot be negative")
	ErrInvalidBaudRate      = errors.New("baud_rate cannot be negative")
	ErrInvalidWorkers       = errors.New("workers must be positive")
	ErrInvalidMemoryLimit   = errors.New("memory_limit cannot be negative")
	ErrInvalidFormat        = errors.New("format must be 'text' or 'jsonl'")
	ErrInvalidCompression   = errors.New("compression must be 'none', 'zstd' or 'lz4'")
	ErrInvalidCodec         = errors.New("codec must be 'json' or 'go-json'")
	ErrInvalidStorage       = errors.New("storage must be 'mmap' or 'heap'")
	ErrInvalidIndicator     = errors.New("indicator must be none, log, text, or ansi")
	ErrInvalidLogFormat     = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel      = errors.New("log_level must be debug, info, warn, or error")
)

// Config holds the runtime configuration of the bitsieve binary.
type Config struct {
	Bound         int           `envconfig:"BOUND" default:"10000"`
	Cycles        uint64        `envconfig:"CYCLES" default:"0"` // 0 repeats until interrupted
	PulseDuration time.Duration `envconfig:"PULSE_DURATION" default:"1s"`
	Verify        bool          `envconfig:"VERIFY" default:"false"`

	Format      string `envconfig:"FORMAT" default:"text"`
	Compression string `envconfig:"COMPRESSION" default:"none"`
	Codec       string `envconfig:"CODEC" default:"go-json"`
	BaudRate    int    `envconfig:"BAUD_RATE" default:"0"` // 0 means unthrottled
	Quiet       bool   `envconfig:"QUIET" default:"false"`
	Indicator   string `envconfig:"INDICATOR" default:"log"`

	Workers     int    `envconfig:"WORKERS" default:"1"`
	MemoryLimit int64  `envconfig:"MEMORY_LIMIT" default:"0"` // bytes, 0 means unlimited
	Storage     string `envconfig:"STORAGE" default:"mmap"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:""` // empty disables the server
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Bound:         10000,
		Cycles:        0,
		PulseDuration: time.Second,
		Format:        string(report.FormatText),
		Compression:   string(report.CompressionNone),
		Codec:         "go-json",
		Indicator:     "log",
		Workers:       1,
		Storage:       "mmap",
		LogFormat:     "text",
		LogLevel:      "info",
	}
}

// LoadConfig reads an optional .env file and then the BITSIEVE_* environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// ParseFlags overrides cfg with command-line flags. Unset flags keep the
// values loaded from the environment.
func ParseFlags(cfg *Config, args []string, output io.Writer) error {
	flags := flag.NewFlagSet("bitsieve", flag.ContinueOnError)
	flags.SetOutput(output)

	flags.IntVar(&cfg.Bound, "bound", cfg.Bound, "Exclusive upper limit of the sieve")
	flags.Uint64Var(&cfg.Cycles, "cycles", cfg.Cycles, "Number of cycles to run (0 = until interrupted)")
	flags.DurationVar(&cfg.PulseDuration, "pulse", cfg.PulseDuration, "How long each indicator stays on")
	flags.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Compare every cycle against the first")
	flags.StringVar(&cfg.Format, "format", cfg.Format, "Output format: text or jsonl")
	flags.StringVar(&cfg.Compression, "compression", cfg.Compression, "Output compression: none, zstd or lz4")
	flags.StringVar(&cfg.Codec, "codec", cfg.Codec, "JSON codec for jsonl output: json or go-json")
	flags.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "Emulated serial baud rate (0 = unthrottled)")
	flags.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Do not print primes")
	flags.StringVar(&cfg.Indicator, "indicator", cfg.Indicator, "Indicator: none, log, text or ansi")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Workers for large elimination passes")
	flags.Int64Var(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "Storage budget in bytes (0 = unlimited)")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Bit storage: mmap or heap")
	flags.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Address for Prometheus metrics (empty = disabled)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or text")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	return flags.Parse(args)
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if _, err := cfg.BoundValue(); err != nil {
		return err
	}
	if cfg.PulseDuration < 0 {
		return ErrInvalidPulseDuration
	}
	if cfg.BaudRate < 0 {
		return ErrInvalidBaudRate
	}
	if cfg.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if cfg.MemoryLimit < 0 {
		return ErrInvalidMemoryLimit
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return ErrInvalidFormat
	}
	if _, err := report.ParseCompression(cfg.Compression); err != nil {
		return ErrInvalidCompression
	}
	if _, ok := codec.ByName(cfg.Codec); !ok {
		return ErrInvalidCodec
	}
	if cfg.Storage != "mmap" && cfg.Storage != "heap" {
		return ErrInvalidStorage
	}
	switch cfg.Indicator {
	case "none", "log", "text", "ansi":
	default:
		return ErrInvalidIndicator
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// BoundValue returns the bound as the engine's counter width.
func (c *Config) BoundValue() (uint32, error) {
	b, err := conv.IntToUint32(c.Bound)
	if err != nil || b < 2 {
		return 0, ErrInvalidBound
	}
	return b, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}
