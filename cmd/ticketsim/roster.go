package main

import (
	"fmt"

	"github.com/cimillas/ticketpool/internal/config"
	"github.com/spf13/cobra"
)

func newRosterCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List the configured vendors and customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRoster(cfg))
			return nil
		},
	}
}
