package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/boundarylint/pkg/config"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

func newRulesCommand(global *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(global.configPath)
			if err != nil {
				return err
			}

			metas := rules.AllMeta()

			if asJSON {
				data, marshalErr := json.MarshalIndent(metas, "", "  ")
				if marshalErr != nil {
					return fmt.Errorf("encode rules: %w", marshalErr)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rulesTable(metas, cfg))

			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print rule metadata as JSON")

	return cmd
}

func rulesTable(metas []rules.Meta, cfg *config.Config) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Rule", "Enabled", "Fixable", "Description"})

	for _, meta := range metas {
		tw.AppendRow(table.Row{meta.Name, yesNo(cfg.Enabled(meta.Name)), yesNo(meta.Fixable), meta.Description})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, WidthMax: 60},
	})

	return tw.Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}
