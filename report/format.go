package report

import "fmt"

// Format selects how a Writer renders events.
type Format string

const (
	// FormatText is the serial console text protocol.
	FormatText Format = "text"
	// FormatJSONL writes one JSON record per line.
	FormatJSONL Format = "jsonl"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSONL, "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", s)
	}
}

// Compression selects the stream compression of a Writer.
type Compression string

const (
	// CompressionNone writes the stream as is.
	CompressionNone Compression = "none"
	// CompressionZstd wraps the stream in a zstd frame.
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 wraps the stream in an lz4 frame.
	CompressionLZ4 Compression = "lz4"
)

// ParseCompression parses a compression name.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case CompressionNone, "":
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	case CompressionLZ4:
		return CompressionLZ4, nil
	default:
		return "", fmt.Errorf("report: unknown compression %q", s)
	}
}

// Event types of JSON-lines records.
const (
	EventStart   = "start"
	EventPrime   = "prime"
	EventSummary = "summary"
)

// StartRecord is the JSON-lines record written at cycle start.
type StartRecord struct {
	Event string `json:"event"`
	Bound uint32 `json:"bound"`
}

// PrimeRecord is the JSON-lines record written per prime.
type PrimeRecord struct {
	Event string `json:"event"`
	Value uint32 `json:"value"`
}

// SummaryRecord is the JSON-lines record written at the end of a cycle.
type SummaryRecord struct {
	Event string `json:"event"`
	Count uint32 `json:"count"`
	Bound uint32 `json:"bound"`
}
