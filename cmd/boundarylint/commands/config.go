package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/boundarylint/pkg/config"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or validate the configuration file",
	}

	cmd.AddCommand(newConfigInitCommand(global), newConfigValidateCommand(global))

	return cmd
}

func newConfigInitCommand(global *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := global.configPath
			if path == "" {
				path = config.FileName
			}

			err := config.WriteFile(path, config.Default(), force)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newConfigValidateCommand(global *globalOptions) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(global.configPath)
			if err != nil {
				return err
			}

			source := config.UsedFile(global.configPath)
			if source == "" {
				source = "defaults"
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration ok (%s)\n", source)
			if err != nil || !show {
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the effective configuration")

	return cmd
}
