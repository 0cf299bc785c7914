package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	fundraisingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the versioned postgres schema.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&volunteerdomain.Volunteer{},
		&volunteerdomain.Task{},
		&compliancedomain.Step{},
		&meetingdomain.Meeting{},
		&meetingdomain.RSVP{},
		&meetingdomain.MinutesRecord{},
		&meetingdomain.EmergencyMeetingRequest{},
		&fundraisingdomain.Progress{},
		&fundraisingdomain.Donation{},
		&fundraisingdomain.Prospect{},
		&fundraisingdomain.OutreachEntry{},
		&auditdomain.AuditLog{},
		&idempotency.Receipt{},
	}
}

// AutoMigrate builds the schema from the models. It serves sqlite and mysql,
// which have no versioned migration set.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
