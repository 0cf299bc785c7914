package main

import (
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/migration"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/scheduler"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/server"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCommand() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		Run: func(cmd *cobra.Command, _ []string) {
			options := []fx.Option{
				config.Module,
				observability.Module,
				fx.Provide(RegisterSnowflake),
				db.Module,
				clock.Module,
			}
			if !skipMigrate {
				options = append(options, migration.Module)
			}
			options = append(options, server.Module, scheduler.Module)
			fx.New(options...).Run()
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply schema migrations on start")
	return cmd
}
