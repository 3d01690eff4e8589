package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

// Server defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultMaxBodyBytes = 1 << 20 // 1 MiB.
)

// DefaultLogLevel is used when log.level is unset.
const DefaultLogLevel = "info"

//nolint:gochecknoglobals // Read-only enumerations.
var (
	logLevels = []string{"debug", "info", "warn", "error"}

	// DefaultExclude skips build output on top of .gitignore and vendored trees.
	DefaultExclude = []string{"dist/", "build/", "coverage/", "*.d.ts"}
)

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Rule defaults mirror rules.DefaultOptions.
	viperCfg.SetDefault("rules.require-boundary.enabled", true)
	viperCfg.SetDefault("rules.require-boundary.boundary_component", []string{rules.DefaultBoundaryComponent})
	viperCfg.SetDefault("rules.require-boundary.import_source", rules.DefaultImportSource)

	viperCfg.SetDefault("rules.require-with-boundary.enabled", true)
	viperCfg.SetDefault("rules.require-with-boundary.with_boundary_function", rules.DefaultWrapperFunction)
	viperCfg.SetDefault("rules.require-with-boundary.import_source", rules.DefaultImportSource)
	viperCfg.SetDefault("rules.require-with-boundary.boundary_component", []string{rules.DefaultBoundaryComponent})
	viperCfg.SetDefault("rules.require-with-boundary.enable_hoc_detection", true)
	viperCfg.SetDefault("rules.require-with-boundary.allow_boundary_element", false)
	viperCfg.SetDefault("rules.require-with-boundary.allow_pure_wrapper", false)

	// File defaults.
	viperCfg.SetDefault("files.extensions", uast.SupportedExtensions())
	viperCfg.SetDefault("files.exclude", DefaultExclude)

	// Logging defaults.
	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.json", false)

	// Cache defaults.
	viperCfg.SetDefault("cache.enabled", true)
	viperCfg.SetDefault("cache.directory", "")

	// Server defaults.
	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)

	viperCfg.SetDefault("jobs", 0)
}

// Default returns the configuration used when no file or environment
// overrides exist.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}
