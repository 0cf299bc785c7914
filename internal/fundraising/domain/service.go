package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
)

type AddProspectRequest struct {
	PersonID     string
	Name         string
	Email        string
	Phone        string
	Organization string
	Type         string
	Amount       int64
}

type OutreachRequest struct {
	Date   string
	Method string
	Notes  string
}

type LogDonationRequest struct {
	PersonID       string
	Amount         int64
	Type           string
	Note           string
	Date           string
	IdempotencyKey string
}

type Service interface {
	Get(ctx context.Context, personID string) (Progress, error)
	SetGoal(ctx context.Context, personID string, amount int64) (Progress, error)

	GetProspect(ctx context.Context, prospectID string) (Prospect, error)
	AddProspect(ctx context.Context, req AddProspectRequest) (Prospect, error)
	RemoveProspect(ctx context.Context, prospectID string) error
	UpdateProspectStatus(ctx context.Context, prospectID, status string) (Prospect, error)
	LogOutreach(ctx context.Context, prospectID string, req OutreachRequest) (Prospect, error)

	LogDonation(ctx context.Context, req LogDonationRequest) (Donation, error)
	Reconcile(ctx context.Context, personID string) (Reconciliation, error)
}

var (
	ErrVolunteerNotFound     = apperr.New(apperr.ErrNotFound, "volunteer_not_found")
	ErrProspectNotFound      = apperr.New(apperr.ErrNotFound, "prospect_not_found")
	ErrInvalidID             = apperr.New(apperr.ErrValidation, "invalid_id")
	ErrNotBoardMember        = apperr.New(apperr.ErrValidation, "ledger_requires_governance_role")
	ErrInvalidGoal           = apperr.New(apperr.ErrInvalidAmount, "invalid_goal_amount")
	ErrInvalidDonationAmount = apperr.New(apperr.ErrInvalidAmount, "invalid_donation_amount")
	ErrInvalidProspectAmount = apperr.New(apperr.ErrInvalidAmount, "invalid_prospect_amount")
	ErrInvalidDonationType   = apperr.New(apperr.ErrValidation, "invalid_donation_type")
	ErrInvalidProspectName   = apperr.New(apperr.ErrValidation, "invalid_prospect_name")
	ErrInvalidProspectType   = apperr.New(apperr.ErrValidation, "invalid_prospect_type")
	ErrInvalidProspectStatus = apperr.New(apperr.ErrValidation, "invalid_prospect_status")
	ErrInvalidOutreachMethod = apperr.New(apperr.ErrValidation, "invalid_outreach_method")
	ErrInvalidDate           = apperr.New(apperr.ErrValidation, "invalid_date")
)
