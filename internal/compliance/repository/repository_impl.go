package repository

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type subjectRow struct {
	ID          snowflake.ID
	Role        string
	AppliedRole string
}

func (r *repo) FindSubject(ctx context.Context, db *gorm.DB, personID snowflake.ID) (*domain.Subject, error) {
	return r.findSubject(db.WithContext(ctx), personID)
}

func (r *repo) FindSubjectForUpdate(ctx context.Context, db *gorm.DB, personID snowflake.ID) (*domain.Subject, error) {
	return r.findSubject(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), personID)
}

func (r *repo) findSubject(db *gorm.DB, personID snowflake.ID) (*domain.Subject, error) {
	var row subjectRow
	err := db.Table("volunteers").
		Select("id, role, applied_role").
		Where("id = ?", personID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &domain.Subject{
		ID:          row.ID,
		Role:        roles.Role(row.Role),
		AppliedRole: roles.Role(row.AppliedRole),
	}, nil
}

func (r *repo) ListSteps(ctx context.Context, db *gorm.DB, personID snowflake.ID) ([]domain.Step, error) {
	var steps []domain.Step
	err := db.WithContext(ctx).
		Where("volunteer_id = ?", personID).
		Order("step_id asc").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *repo) FindStep(ctx context.Context, db *gorm.DB, personID snowflake.ID, stepID domain.StepID) (*domain.Step, error) {
	var step domain.Step
	err := db.WithContext(ctx).
		Where("volunteer_id = ? AND step_id = ?", personID, stepID).
		Limit(1).
		Find(&step).Error
	if err != nil {
		return nil, err
	}
	if step.VolunteerID == 0 {
		return nil, nil
	}
	return &step, nil
}

func (r *repo) InsertMissing(ctx context.Context, db *gorm.DB, steps []domain.Step) error {
	if len(steps) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&steps).Error
}

func (r *repo) UpdateStep(ctx context.Context, db *gorm.DB, step *domain.Step) error {
	return db.WithContext(ctx).
		Model(&domain.Step{}).
		Where("volunteer_id = ? AND step_id = ?", step.VolunteerID, step.StepID).
		Updates(map[string]any{
			"status":        step.Status,
			"document_path": step.DocumentPath,
			"updated_at":    step.UpdatedAt,
		}).Error
}
