package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lsp"
	"github.com/Sumatoshi-tech/boundarylint/pkg/mcp"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/version"
)

// Stdio servers own stdout, so they always log to stderr.

func newLSPCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Long: `Start a Language Server Protocol server on stdio. Open documents get
boundary diagnostics, and fixable ones offer quick-fix code actions.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			sess, err := global.open(sessionOptions{mode: observability.ModeLSP, logWriter: os.Stderr})
			if err != nil {
				return err
			}
			defer sess.close()

			linter, err := sess.linter(nil)
			if err != nil {
				return err
			}

			return lsp.NewServer(lsp.Config{
				Linter:  linter,
				Version: version.String(),
				Logger:  sess.logger,
				Tracer:  sess.providers.Tracer,
				Metrics: sess.metrics,
			}).Run()
		},
	}
}

func newMCPCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdio transport. It exposes:
  - boundary_lint: lint inline JSX/TSX source, optionally returning the fixed source
  - boundary_rules: list the enabled rules`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := global.open(sessionOptions{mode: observability.ModeMCP, logWriter: os.Stderr})
			if err != nil {
				return err
			}
			defer sess.close()

			linter, err := sess.linter(nil)
			if err != nil {
				return err
			}

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Linter:  linter,
				Version: version.String(),
				Logger:  sess.logger,
				Metrics: red,
				Tracer:  sess.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
