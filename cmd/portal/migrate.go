package main

import (
	"context"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/migration"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(
				config.Module,
				observability.Module,
				db.Module,
				migration.Module,
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			return app.Stop(ctx)
		},
	}
}
