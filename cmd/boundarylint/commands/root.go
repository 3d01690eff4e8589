// Package commands implements the boundarylint CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/boundarylint/pkg/config"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/version"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	verbose    bool
	quiet      bool
	configPath string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "boundarylint",
		Short: "Lint React components for error boundaries",
		Long: `boundarylint checks JSX/TSX modules for exported components that are not
wrapped in a boundary element or not exported through withBoundary().

Commands:
  lint      Lint files and directories, optionally applying fixes
  rules     List the available rules
  config    Create or validate the configuration file
  lsp       Run the language server on stdio
  mcp       Run the MCP server on stdio
  serve     Serve the lint HTTP API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./"+config.FileName+" or $HOME/"+config.FileName+")")

	root.AddCommand(
		newLintCommand(opts),
		newRulesCommand(opts),
		newConfigCommand(opts),
		newLSPCommand(opts),
		newMCPCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return root
}

// session is the state shared by commands after configuration is loaded.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
	metrics   *observability.LintMetrics
}

// sessionOptions tune observability per command.
type sessionOptions struct {
	mode       observability.AppMode
	prometheus bool
	logWriter  io.Writer
}

func (g *globalOptions) open(so sessionOptions) (*session, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.String()
	obsCfg.Mode = so.mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = so.prometheus
	obsCfg.LogLevel = g.logLevel(cfg.Log.Level)
	obsCfg.LogJSON = cfg.Log.JSON
	obsCfg.LogWriter = so.logWriter

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewLintMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())

		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &session{cfg: cfg, providers: providers, logger: providers.Logger, metrics: metrics}, nil
}

func (g *globalOptions) logLevel(configured string) slog.Level {
	switch {
	case g.verbose:
		return slog.LevelDebug
	case g.quiet:
		return slog.LevelError
	default:
		return observability.ParseLogLevel(configured)
	}
}

// close flushes telemetry.
func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.logger.Warn("observability shutdown failed", slog.Any("error", err))
	}
}

// linter builds a linter for the configured rules, or exactly the rules in
// only when it is non-empty.
func (s *session) linter(only []string) (*lint.Linter, error) {
	selected, err := s.cfg.BuildRules(only)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(selected))
	for _, rule := range selected {
		names = append(names, rule.Meta().Name)
	}

	s.logger.Debug("rules enabled", slog.Any("rules", names))

	return lint.NewLinter(rules.NewEngine(selected...)), nil
}
