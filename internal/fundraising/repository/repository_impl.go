package repository

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type ownerRow struct {
	ID                snowflake.ID
	Role              string
	ApplicationStatus string
}

func (r *repo) FindOwner(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*domain.Owner, error) {
	var row ownerRow
	err := db.WithContext(ctx).
		Table("volunteers").
		Select("id, role, application_status").
		Where("id = ?", volunteerID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &domain.Owner{
		ID:                row.ID,
		Role:              roles.Role(row.Role),
		ApplicationStatus: volunteerdomain.ApplicationStatus(row.ApplicationStatus),
	}, nil
}

func (r *repo) FindProgress(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*domain.Progress, error) {
	var progress domain.Progress
	err := db.WithContext(ctx).
		Preload("Donations", func(db *gorm.DB) *gorm.DB { return db.Order("donated_at asc, id asc") }).
		Preload("Prospects", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Prospects.OutreachLog", func(db *gorm.DB) *gorm.DB { return db.Order("contacted_at asc, id asc") }).
		Where("volunteer_id = ?", volunteerID).
		Limit(1).
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	if progress.VolunteerID == 0 {
		return nil, nil
	}
	return &progress, nil
}

func (r *repo) FindProgressForUpdate(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) (*domain.Progress, error) {
	var progress domain.Progress
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("volunteer_id = ?", volunteerID).
		Limit(1).
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	if progress.VolunteerID == 0 {
		return nil, nil
	}
	return &progress, nil
}

func (r *repo) EnsureProgress(ctx context.Context, db *gorm.DB, progress *domain.Progress) error {
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(progress).Error
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, progress *domain.Progress) error {
	return db.WithContext(ctx).
		Model(&domain.Progress{}).
		Where("volunteer_id = ?", progress.VolunteerID).
		Updates(map[string]any{
			"goal":                  progress.Goal,
			"personal_contribution": progress.PersonalContribution,
			"fundraised":            progress.Fundraised,
			"raised":                progress.Raised,
			"updated_at":            progress.UpdatedAt,
		}).Error
}

func (r *repo) InsertDonation(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Create(donation).Error
}

func (r *repo) FindDonation(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) ListDonations(ctx context.Context, db *gorm.DB, volunteerID snowflake.ID) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := db.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("donated_at asc, id asc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repo) InsertProspect(ctx context.Context, db *gorm.DB, prospect *domain.Prospect) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(prospect).Error
}

func (r *repo) FindProspect(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Prospect, error) {
	return r.findProspect(db.WithContext(ctx).
		Preload("OutreachLog", func(db *gorm.DB) *gorm.DB { return db.Order("contacted_at asc, id asc") }), id)
}

func (r *repo) FindProspectForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Prospect, error) {
	return r.findProspect(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) findProspect(db *gorm.DB, id snowflake.ID) (*domain.Prospect, error) {
	var prospect domain.Prospect
	err := db.Where("id = ?", id).Limit(1).Find(&prospect).Error
	if err != nil {
		return nil, err
	}
	if prospect.ID == 0 {
		return nil, nil
	}
	return &prospect, nil
}

func (r *repo) UpdateProspect(ctx context.Context, db *gorm.DB, prospect *domain.Prospect) error {
	return db.WithContext(ctx).
		Model(&domain.Prospect{}).
		Where("id = ?", prospect.ID).
		Updates(map[string]any{
			"status":       prospect.Status,
			"last_contact": prospect.LastContact,
			"updated_at":   prospect.UpdatedAt,
		}).Error
}

func (r *repo) DeleteProspect(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Where("prospect_id = ?", id).Delete(&domain.OutreachEntry{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Prospect{}).Error
}

func (r *repo) InsertOutreach(ctx context.Context, db *gorm.DB, entry *domain.OutreachEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}
