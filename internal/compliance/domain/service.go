package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
)

type SetStepStatusRequest struct {
	PersonID     string
	StepID       string
	Status       string
	DocumentPath *string
}

type Checklist struct {
	PersonID string           `json:"person_id"`
	Role     string           `json:"role"`
	Required []StepDefinition `json:"required"`
	Steps    []Step           `json:"steps"`
}

type Service interface {
	SetStepStatus(ctx context.Context, req SetStepStatusRequest) (Step, error)
	Checklist(ctx context.Context, personID string) (Checklist, error)
	Eligibility(ctx context.Context, personID, capability string) (Eligibility, error)
}

var (
	ErrPersonNotFound     = apperr.New(apperr.ErrNotFound, "person_not_found")
	ErrInvalidPersonID    = apperr.New(apperr.ErrValidation, "invalid_person_id")
	ErrStepNotInCatalogue = apperr.New(apperr.ErrInvalidStep, "step_not_in_catalogue")
	ErrInvalidStepStatus  = apperr.New(apperr.ErrValidation, "invalid_step_status")
	ErrDocumentRequired   = apperr.New(apperr.ErrValidation, "document_required")
	ErrUnknownCapability  = apperr.New(apperr.ErrValidation, "unknown_capability")
)
