package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
)

type Identity struct {
	LegalFirstName string
	LegalLastName  string
	PreferredName  string
	Email          string
	Phone          string
	Demographics   map[string]any
}

type SubmitApplicationRequest struct {
	Identity
	AppliedRole    string
	RoleAssessment []AssessmentAnswer
	ResumePath     string
}

type ReviewRequest struct {
	ID     string
	Action string
	Notes  string
}

type AddVolunteerRequest struct {
	Identity
	Role string
	Tags []string
}

type AssignTaskRequest struct {
	VolunteerID string
	Title       string
	Description string
	DueDate     string
}

type ListRequest struct {
	pagination.Pagination
	ApplicationStatus string
	Role              string
	Email             string
}

type ListResponse struct {
	pagination.PageInfo
	Volunteers []Volunteer `json:"volunteers"`
}

type Service interface {
	SubmitApplication(ctx context.Context, req SubmitApplicationRequest) (Volunteer, error)
	ReviewApplication(ctx context.Context, req ReviewRequest) (Volunteer, error)
	AddVolunteer(ctx context.Context, req AddVolunteerRequest) (Volunteer, error)
	Get(ctx context.Context, id string) (Volunteer, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	AssignTask(ctx context.Context, req AssignTaskRequest) (Task, error)
	CompleteTask(ctx context.Context, volunteerID, taskID string) (Task, error)
	LogHours(ctx context.Context, volunteerID string, hours float64) (Volunteer, error)
	SetOnboardingProgress(ctx context.Context, volunteerID string, progress int) (Volunteer, error)
	SetTags(ctx context.Context, volunteerID string, tags []string) (Volunteer, error)
}

var (
	ErrVolunteerNotFound        = apperr.New(apperr.ErrNotFound, "volunteer_not_found")
	ErrTaskNotFound             = apperr.New(apperr.ErrNotFound, "task_not_found")
	ErrInvalidID                = apperr.New(apperr.ErrValidation, "invalid_id")
	ErrInvalidName              = apperr.New(apperr.ErrValidation, "invalid_name")
	ErrInvalidEmail             = apperr.New(apperr.ErrValidation, "invalid_email")
	ErrInvalidReviewAction      = apperr.New(apperr.ErrValidation, "invalid_review_action")
	ErrInvalidTaskTitle         = apperr.New(apperr.ErrValidation, "invalid_task_title")
	ErrInvalidDueDate           = apperr.New(apperr.ErrValidation, "invalid_due_date")
	ErrInvalidHours             = apperr.New(apperr.ErrValidation, "invalid_hours")
	ErrInvalidProgress          = apperr.New(apperr.ErrValidation, "invalid_onboarding_progress")
	ErrInvalidApplicationStatus = apperr.New(apperr.ErrValidation, "invalid_application_status")
	ErrAlreadyReviewed          = apperr.New(apperr.ErrInvalidTransition, "application_already_reviewed")
	ErrTaskAlreadyCompleted     = apperr.New(apperr.ErrInvalidTransition, "task_already_completed")
	ErrVolunteerNotActive       = apperr.New(apperr.ErrInvalidTransition, "volunteer_not_active")
)
