// Command ticketsim runs ticket pool simulations from a YAML configuration
// and edits that configuration.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "ticketpool.yaml"

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ticketsim",
		Short:         "Simulate vendors and customers trading through one bounded ticket pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the simulation config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every waiting customer as well")

	root.AddCommand(newRunCmd(opts), newConfigCmd(opts), newRosterCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.New(os.Stderr, "", 0).Printf("ticketsim: %v", err)
		os.Exit(1)
	}
}
