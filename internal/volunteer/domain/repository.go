package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ApplicationStatus ApplicationStatus
	Role              roles.Role
	Email             string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, volunteer *Volunteer) error
	Update(ctx context.Context, db *gorm.DB, volunteer *Volunteer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Volunteer, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Volunteer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Volunteer, error)

	InsertTask(ctx context.Context, db *gorm.DB, task *Task) error
	FindTask(ctx context.Context, db *gorm.DB, volunteerID, taskID snowflake.ID) (*Task, error)
	UpdateTask(ctx context.Context, db *gorm.DB, task *Task) error
}
