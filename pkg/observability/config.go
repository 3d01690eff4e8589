// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for every boundarylint mode (CLI, LSP, MCP, serve).
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the one-shot lint command.
	ModeCLI AppMode = "cli"
	// ModeLSP is the stdio language server.
	ModeLSP AppMode = "lsp"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
	// ModeServe is the HTTP API mode.
	ModeServe AppMode = "serve"
)

const (
	defaultServiceName        = "boundarylint"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio is the root trace sampling ratio; zero samples everything.
	SampleRatio float64

	// Prometheus attaches a pull exporter and exposes it as Providers.MetricsHandler.
	Prometheus bool

	LogLevel slog.Level
	LogJSON  bool
	// LogWriter receives log output; nil means stderr. Stdio servers must
	// never log to stdout.
	LogWriter io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLogLevel maps debug/info/warn/error to a level, defaulting to info.
func ParseLogLevel(name string) slog.Level {
	var level slog.Level

	if level.UnmarshalText([]byte(name)) != nil {
		return slog.LevelInfo
	}

	return level
}
