package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Owner is the slice of a volunteer record the ledger needs.
type Owner struct {
	ID                snowflake.ID
	Role              roles.Role
	ApplicationStatus volunteerdomain.ApplicationStatus
}

// CanHoldLedger reports an approved volunteer in a governance role.
func (o Owner) CanHoldLedger() bool {
	return o.ApplicationStatus == volunteerdomain.ApplicationApproved && o.Role.IsGovernance()
}

type Repository interface {
	FindOwner(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*Owner, error)

	FindProgress(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*Progress, error)
	FindProgressForUpdate(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*Progress, error)
	// EnsureProgress creates an empty ledger unless one exists.
	EnsureProgress(ctx context.Context, db *gorm.DB, progress *Progress) error
	UpdateProgress(ctx context.Context, db *gorm.DB, progress *Progress) error

	InsertDonation(ctx context.Context, db *gorm.DB, donation *Donation) error
	FindDonation(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Donation, error)
	ListDonations(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) ([]Donation, error)

	InsertProspect(ctx context.Context, db *gorm.DB, prospect *Prospect) error
	FindProspect(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Prospect, error)
	FindProspectForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Prospect, error)
	UpdateProspect(ctx context.Context, db *gorm.DB, prospect *Prospect) error
	DeleteProspect(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	InsertOutreach(ctx context.Context, db *gorm.DB, entry *OutreachEntry) error
}
