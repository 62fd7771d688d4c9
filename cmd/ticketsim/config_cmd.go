package main

import (
	"fmt"

	"github.com/cimillas/ticketpool/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the simulation config file",
	}
	cmd.AddCommand(newConfigShowCmd(root), newConfigSetCmd(root))
	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", root.configPath, data)
			return nil
		},
	}
}

func newConfigSetCmd(root *rootOptions) *cobra.Command {
	o := &overrides{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change configuration values and save them",
		Example: `  ticketsim config set --capacity 200 --release-rate 2
  ticketsim config set --vendors 3 --customers 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.changed(cmd.Flags()) {
				return cmd.Help()
			}
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			if err := o.apply(cmd.Flags(), cfg); err != nil {
				return err
			}
			if err := cfg.Save(root.configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Configuration saved to "+root.configPath))
			return nil
		},
	}
	addConfigFlags(cmd.Flags(), o)
	return cmd
}
