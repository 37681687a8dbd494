package main

import (
	"fmt"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/storage"
	"github.com/spf13/cobra"
)

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := storage.NewStorage(ctx, &e.cfg.Storage, e.log)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			tokens := auth.NewTokenService(auth.TokenConfig{SlotName: e.cfg.Storage.TokenSlotName}, nil, store, e.log)
			if err := tokens.Discard(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session token discarded")
			return nil
		},
	}
}
