package main

import (
	"errors"
	"fmt"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/database"
	"github.com/epic-events/crm/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedAdminCmd(e *env) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the default administrator account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			if err := validation.Password(password); err != nil {
				return fmt.Errorf("invalid password: %w", err)
			}
			if err := e.withSecrets(cmd.Context()); err != nil {
				return err
			}
			db, closeDB, err := e.connect()
			if err != nil {
				return err
			}
			defer closeDB()

			hash, err := auth.NewPasswordHasher(e.cfg.Auth.PasswordSalt, e.cfg.Auth.BcryptCost).Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			if err := database.SeedRoles(db); err != nil {
				return err
			}
			created, err := database.SeedAdmin(db, hash)
			if err != nil {
				return err
			}

			if created {
				e.log.Info("Administrator created", zap.String("email", database.AdminEmail))
				fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s created\n", database.AdminEmail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s already exists\n", database.AdminEmail)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password of the administrator account")
	return cmd
}
