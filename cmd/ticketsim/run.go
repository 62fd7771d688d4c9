package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cimillas/ticketpool/internal/config"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/observe"
	"github.com/cimillas/ticketpool/internal/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &overrides{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its summary",
		Long: `Run one simulation: every vendor adds tickets at the release rate until the
pool reaches capacity, every customer buys at the retrieval rate until the pool
is sold out. Flags override the config file for this run only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			if err := o.apply(cmd.Flags(), cfg); err != nil {
				return err
			}
			sim, err := cfg.Simulation()
			if err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			if len(sim.Vendors) == 0 {
				logger.Printf("WARN: roster has no vendors, nothing will be issued")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, runErr := simulation.Run(ctx, sim,
				simulation.WithObserver(observe.NewLogObserver(logger, root.verbose)),
			)
			if runErr != nil && !errors.Is(runErr, domain.ErrInterrupted) {
				return runErr
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res))
			return runErr
		},
	}
	addConfigFlags(cmd.Flags(), o)
	return cmd
}
