package domain

import (
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/bwmarrin/snowflake"
)

type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusVerified  StepStatus = "verified"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusCompleted, StepStatusVerified:
		return true
	}
	return false
}

type Step struct {
	VolunteerID  snowflake.ID `gorm:"primaryKey" json:"volunteer_id"`
	StepID       StepID       `gorm:"primaryKey;type:varchar(64)" json:"step_id"`
	Label        string       `gorm:"not null" json:"label"`
	Status       StepStatus   `gorm:"type:varchar(16);not null" json:"status"`
	DocumentPath *string      `json:"document_path,omitempty"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (Step) TableName() string { return "compliance_steps" }

// IsSatisfied reports whether step counts toward eligibility.
func IsSatisfied(step Step) bool {
	return step.Status == StepStatusCompleted || step.Status == StepStatusVerified
}

// Subject is the compliance view of a volunteer.
type Subject struct {
	ID          snowflake.ID
	Role        roles.Role
	AppliedRole roles.Role
}

// CatalogueRole is the role whose catalogue applies: the assigned role once
// set, otherwise the role applied for.
func (s Subject) CatalogueRole() roles.Role {
	if s.Role != "" {
		return s.Role
	}
	return s.AppliedRole
}

// NewSteps materializes def entries for volunteerID. Steps listed in
// completed start completed, everything else pending.
func NewSteps(volunteerID snowflake.ID, defs []StepDefinition, now time.Time, completed ...StepID) []Step {
	done := make(map[StepID]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	steps := make([]Step, 0, len(defs))
	for _, def := range defs {
		status := StepStatusPending
		if _, ok := done[def.ID]; ok {
			status = StepStatusCompleted
		}
		steps = append(steps, Step{
			VolunteerID: volunteerID,
			StepID:      def.ID,
			Label:       def.Label,
			Status:      status,
			UpdatedAt:   now,
		})
	}
	return steps
}
