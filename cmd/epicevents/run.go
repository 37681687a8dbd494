package main

import (
	"context"
	"os"

	"github.com/epic-events/crm/internal/display"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd.Context(), e)
		},
	}
}

// runSession serves the interactive menus on the terminal. The audit
// retention job runs in the background for the lifetime of the session.
func runSession(ctx context.Context, e *env) error {
	if err := e.withSecrets(ctx); err != nil {
		return err
	}
	db, closeDB, err := e.connect()
	if err != nil {
		return err
	}
	defer closeDB()

	c, err := newContainer(ctx, e, db, display.NewTerminal(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}

	scheduler, err := c.scheduler()
	if err != nil {
		e.log.Error("Failed to register jobs", zap.Error(err))
	} else {
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
			e.log.Info("Scheduler stopped")
		}()
	}

	e.log.Info("Session started")
	err = c.app.Run(ctx)
	e.log.Info("Session ended", zap.Error(err))
	return err
}
