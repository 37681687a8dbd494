package main

import (
	"database/sql"
	"fmt"

	"github.com/epic-events/crm/internal/config"
	"github.com/epic-events/crm/internal/database"
	"github.com/epic-events/crm/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect the database schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openMigrationDB(&e.cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB()

			goose.SetBaseFS(migrations.FS)
			if err := goose.SetDialect(gooseDialect(e.cfg.Database.Driver)); err != nil {
				return fmt.Errorf("failed to set dialect: %w", err)
			}

			ctx := cmd.Context()
			switch args[0] {
			case "up":
				if err := goose.UpContext(ctx, db, "."); err != nil {
					return fmt.Errorf("failed to run up migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			case "down":
				if err := goose.DownContext(ctx, db, "."); err != nil {
					return fmt.Errorf("failed to run down migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
			case "status":
				if err := goose.StatusContext(ctx, db, "."); err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
			case "version":
				if err := goose.VersionContext(ctx, db, "."); err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
			}
			e.log.Info("Migration command completed", zap.String("command", args[0]))
			return nil
		},
	}
}

func gooseDialect(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}

// openMigrationDB opens a plain database/sql handle: lib/pq for postgres, the
// gorm sqlite connection otherwise
func openMigrationDB(cfg *config.DatabaseConfig) (*sql.DB, func(), error) {
	if cfg.Driver == "postgres" {
		db, err := sql.Open("postgres", cfg.ConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	}

	gdb, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}
