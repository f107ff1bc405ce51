// Package observability wires structured logging, OpenTelemetry tracing and
// metrics, and Prometheus collectors for interval trees and their stores.
package observability

import (
	"log/slog"
	"strings"
)

// AppMode identifies how the process runs.
type AppMode string

// Application modes.
const (
	ModeCLI     AppMode = "cli"
	ModeLibrary AppMode = "library"
)

const defaultShutdownTimeoutSec = 5

// Config controls Init.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	LogLevel slog.Level
	LogJSON  bool

	// OTLPEndpoint enables OTLP/gRPC export of traces and metrics. Empty
	// means no-op providers.
	OTLPEndpoint string
	OTLPInsecure bool
	OTLPHeaders  map[string]string
	SampleRatio  float64

	// Prometheus exposes metrics through Providers.Registry.
	Prometheus bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a CLI configuration with no exporters.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "intervaltree",
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels,
// defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
