package main

import (
	"context"
	"fmt"

	"github.com/epic-events/crm/internal/config"
	"github.com/epic-events/crm/internal/database"
	"github.com/epic-events/crm/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is the configuration and logger shared by every command
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "epicevents",
		Short:         "Epic Events CRM",
		Long:          "Customer relationship management for Epic Events: customers, contracts and events, gated by role.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd.Context(), e)
		},
	}

	root.AddCommand(
		newRunCmd(e),
		newMigrateCmd(e),
		newSeedAdminCmd(e),
		newLogoutCmd(e),
		newJobsCmd(e),
	)
	return root
}

func (e *env) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.log = log
	return nil
}

// withSecrets reloads the configuration with the auth secrets resolved
func (e *env) withSecrets(ctx context.Context) error {
	cfg, err := config.LoadWithSecrets(ctx, e.log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	e.cfg = cfg
	return nil
}

func (e *env) connect() (*gorm.DB, func(), error) {
	db, err := database.NewDatabase(&e.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	e.log.Info("Database connected",
		zap.String("driver", e.cfg.Database.Driver),
		zap.String("environment", e.cfg.App.Environment))

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeDB, nil
}
