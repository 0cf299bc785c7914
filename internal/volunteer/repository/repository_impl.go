package repository

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, volunteer *domain.Volunteer) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(volunteer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, volunteer *domain.Volunteer) error {
	return db.WithContext(ctx).
		Model(&domain.Volunteer{}).
		Where("id = ?", volunteer.ID).
		Updates(map[string]any{
			"application_status":  volunteer.ApplicationStatus,
			"role":                volunteer.Role,
			"tags":                volunteer.Tags,
			"achievements":        volunteer.Achievements,
			"onboarding_progress": volunteer.OnboardingProgress,
			"hours_contributed":   volunteer.HoursContributed,
			"resume_path":         volunteer.ResumePath,
			"review_notes":        volunteer.ReviewNotes,
			"reviewed_by":         volunteer.ReviewedBy,
			"reviewed_at":         volunteer.ReviewedAt,
			"updated_at":          volunteer.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Volunteer, error) {
	return r.find(db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("assigned_date asc, id asc") }).
		Preload("ComplianceSteps", func(db *gorm.DB) *gorm.DB { return db.Order("step_id asc") }), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Volunteer, error) {
	return r.find(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) find(db *gorm.DB, id snowflake.ID) (*domain.Volunteer, error) {
	var volunteer domain.Volunteer
	err := db.Where("id = ?", id).Limit(1).Find(&volunteer).Error
	if err != nil {
		return nil, err
	}
	if volunteer.ID == 0 {
		return nil, nil
	}
	return &volunteer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Volunteer, error) {
	var volunteers []*domain.Volunteer
	stmt := db.WithContext(ctx).Model(&domain.Volunteer{})
	if filter.ApplicationStatus != "" {
		stmt = stmt.Where("application_status = ?", filter.ApplicationStatus)
	}
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	stmt, err := pagination.Apply(stmt, page)
	if err != nil {
		return nil, err
	}
	if err := stmt.Find(&volunteers).Error; err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (r *repo) InsertTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) FindTask(ctx context.Context, db *gorm.DB, volunteerID, taskID snowflake.ID) (*domain.Task, error) {
	var task domain.Task
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("volunteer_id = ? AND id = ?", volunteerID, taskID).
		Limit(1).
		Find(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) UpdateTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"status":       task.Status,
			"completed_at": task.CompletedAt,
		}).Error
}
