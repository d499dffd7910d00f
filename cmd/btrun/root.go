package main

import (
	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "btrun",
		Short:         "Load, check and tick behavior trees",
		Long:          `btrun builds behavior trees from YAML or JSON definitions and ticks them for one or more agents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Engine configuration file (YAML)")

	root.AddCommand(newValidateCmd(), newRunCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
