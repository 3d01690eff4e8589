// Package config provides configuration loading and validation for boundarylint.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidJobs      = errors.New("jobs must not be negative")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidExtension = errors.New("file extensions must start with a dot")
	ErrInvalidBodyLimit = errors.New("max body bytes must be positive")
)

// FileName is the project configuration file looked up by default.
const FileName = ".boundarylint.yaml"

// EnvPrefix prefixes environment overrides, e.g. BOUNDARYLINT_LOG_LEVEL.
const EnvPrefix = "BOUNDARYLINT"

const maxPort = 65535

// Config holds all configuration for boundarylint.
type Config struct {
	Rules     RulesConfig     `mapstructure:"rules"     json:"rules"     yaml:"rules"`
	Files     FilesConfig     `mapstructure:"files"     json:"files"     yaml:"files"`
	Log       LogConfig       `mapstructure:"log"       json:"log"       yaml:"log"`
	Cache     CacheConfig     `mapstructure:"cache"     json:"cache"     yaml:"cache"`
	Server    ServerConfig    `mapstructure:"server"    json:"server"    yaml:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry" yaml:"telemetry"`
	Jobs      int             `mapstructure:"jobs"      json:"jobs"      yaml:"jobs"`
}

// RulesConfig holds per-rule settings keyed by rule name.
type RulesConfig struct {
	RequireBoundary     BoundaryRuleConfig `mapstructure:"require-boundary"      json:"require-boundary"      yaml:"require-boundary"`
	RequireWithBoundary WrapperRuleConfig  `mapstructure:"require-with-boundary" json:"require-with-boundary" yaml:"require-with-boundary"`
}

// BoundaryRuleConfig configures require-boundary.
type BoundaryRuleConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// BoundaryComponent accepts a single name or a list.
	BoundaryComponent []string `mapstructure:"boundary_component" json:"boundary_component" yaml:"boundary_component"`
	ImportSource      string   `mapstructure:"import_source"      json:"import_source"      yaml:"import_source"`
}

// WrapperRuleConfig configures require-with-boundary.
type WrapperRuleConfig struct {
	Enabled              bool     `mapstructure:"enabled"                json:"enabled"                yaml:"enabled"`
	WithBoundaryFunction string   `mapstructure:"with_boundary_function" json:"with_boundary_function" yaml:"with_boundary_function"`
	ImportSource         string   `mapstructure:"import_source"          json:"import_source"          yaml:"import_source"`
	BoundaryComponent    []string `mapstructure:"boundary_component"     json:"boundary_component"     yaml:"boundary_component"`
	EnableHOCDetection   bool     `mapstructure:"enable_hoc_detection"   json:"enable_hoc_detection"   yaml:"enable_hoc_detection"`
	AllowBoundaryElement bool     `mapstructure:"allow_boundary_element" json:"allow_boundary_element" yaml:"allow_boundary_element"`
	AllowPureWrapper     bool     `mapstructure:"allow_pure_wrapper"     json:"allow_pure_wrapper"     yaml:"allow_pure_wrapper"`
}

// FilesConfig selects what the lint command walks.
type FilesConfig struct {
	Extensions []string `mapstructure:"extensions" json:"extensions" yaml:"extensions"`
	// Exclude holds gitignore-style patterns applied on top of .gitignore.
	Exclude []string `mapstructure:"exclude" json:"exclude" yaml:"exclude"`
}

// LogConfig holds logging-specific configuration.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json"  json:"json"  yaml:"json"`
}

// CacheConfig holds lint result cache configuration.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// Directory defaults to the user cache directory when empty.
	Directory string `mapstructure:"directory" json:"directory" yaml:"directory"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"           json:"host"           yaml:"host"`
	Port         int           `mapstructure:"port"           json:"port"           yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"   json:"-"              yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"  json:"-"              yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"   json:"-"              yaml:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the collector address; empty disables export.
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" json:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"  json:"otlp_headers"  yaml:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" json:"otlp_insecure" yaml:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  json:"sample_ratio"  yaml:"sample_ratio"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches FileName in the working directory and $HOME;
// a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// UsedFile reports the config file LoadConfig would read for configPath, or
// "" when none exists.
func UsedFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	viperCfg := viper.New()
	viperCfg.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	viperCfg.SetConfigType("yaml")
	viperCfg.AddConfigPath(".")
	viperCfg.AddConfigPath("$HOME")

	if viperCfg.ReadInConfig() != nil {
		return ""
	}

	return viperCfg.ConfigFileUsed()
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Jobs < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidJobs, config.Jobs)
	}

	if !slices.Contains(logLevels, config.Log.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Log.Level)
	}

	for _, ext := range config.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodyLimit, config.Server.MaxBodyBytes)
	}

	return ValidateSchema(config)
}
