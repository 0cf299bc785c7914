package migration

import (
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply brings the schema up to date for the configured database.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	dbType := strings.ToLower(strings.TrimSpace(cfg.DBType))
	log.Named("migration").Info("applying schema", zap.String("db_type", dbType))
	if dbType != "postgres" {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}
