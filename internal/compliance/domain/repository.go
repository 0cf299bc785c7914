package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindSubject(ctx context.Context, db *gorm.DB, personID snowflake.ID) (*Subject, error)
	FindSubjectForUpdate(ctx context.Context, db *gorm.DB, personID snowflake.ID) (*Subject, error)
	ListSteps(ctx context.Context, db *gorm.DB, personID snowflake.ID) ([]Step, error)
	FindStep(ctx context.Context, db *gorm.DB, personID snowflake.ID, stepID StepID) (*Step, error)
	// InsertMissing creates steps that do not exist yet and leaves existing rows untouched.
	InsertMissing(ctx context.Context, db *gorm.DB, steps []Step) error
	UpdateStep(ctx context.Context, db *gorm.DB, step *Step) error
}
