package main

import (
	"fmt"

	"github.com/epic-events/crm/internal/display"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newJobsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run the housekeeping jobs",
	}

	var runNow string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the job scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := e.withSecrets(ctx); err != nil {
				return err
			}
			db, closeDB, err := e.connect()
			if err != nil {
				return err
			}
			defer closeDB()

			c, err := newContainer(ctx, e, db, display.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			scheduler, err := c.scheduler()
			if err != nil {
				return err
			}

			if runNow != "" {
				if err := scheduler.RunNow(runNow); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s completed\n", runNow)
				return nil
			}

			scheduler.Start()
			e.log.Info("Scheduler started", zap.Strings("jobs", scheduler.JobNames()))
			<-ctx.Done()
			<-scheduler.Stop().Done()
			e.log.Info("Scheduler stopped")
			return nil
		},
	}
	serve.Flags().StringVar(&runNow, "run-now", "", "run the named job once and exit")

	cmd.AddCommand(serve)
	return cmd
}
