package domain

import (
	"time"

	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationPendingReview ApplicationStatus = "pendingReview"
	ApplicationApproved      ApplicationStatus = "approved"
	ApplicationRejected      ApplicationStatus = "rejected"
)

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

type AssessmentAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Volunteer is one person across the whole lifecycle, from applicant to
// active volunteer. Role is authoritative only once the application is
// approved; before that AppliedRole is advisory.
type Volunteer struct {
	ID                 snowflake.ID                          `gorm:"primaryKey" json:"id"`
	LegalFirstName     string                                `gorm:"not null" json:"legal_first_name"`
	LegalLastName      string                                `gorm:"not null" json:"legal_last_name"`
	PreferredName      string                                `json:"preferred_name,omitempty"`
	Email              string                                `gorm:"not null;index" json:"email"`
	Phone              string                                `json:"phone,omitempty"`
	Demographics       datatypes.JSONMap                     `json:"demographics,omitempty"`
	AppliedRole        roles.Role                            `gorm:"type:varchar(64);not null" json:"applied_role"`
	ApplicationStatus  ApplicationStatus                     `gorm:"type:varchar(16);not null;index" json:"application_status"`
	Role               roles.Role                            `gorm:"type:varchar(64)" json:"role,omitempty"`
	RoleAssessment     datatypes.JSONSlice[AssessmentAnswer] `json:"role_assessment"`
	Tags               datatypes.JSONSlice[string]           `json:"tags"`
	Achievements       datatypes.JSONSlice[string]           `json:"achievements"`
	OnboardingProgress int                                   `gorm:"not null;default:0" json:"onboarding_progress"`
	HoursContributed   float64                               `gorm:"not null;default:0" json:"hours_contributed"`
	ResumePath         *string                               `json:"resume_path,omitempty"`
	ReviewNotes        *string                               `json:"review_notes,omitempty"`
	ReviewedBy         *string                               `gorm:"type:varchar(64)" json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time                            `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time                             `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                             `gorm:"not null" json:"updated_at"`

	Tasks           []Task                  `gorm:"foreignKey:VolunteerID" json:"tasks"`
	ComplianceSteps []compliancedomain.Step `gorm:"foreignKey:VolunteerID" json:"compliance_steps"`
}

func (Volunteer) TableName() string { return "volunteers" }

// DisplayName prefers the preferred name over the legal first name.
func (v Volunteer) DisplayName() string {
	first := v.PreferredName
	if first == "" {
		first = v.LegalFirstName
	}
	if v.LegalLastName == "" {
		return first
	}
	return first + " " + v.LegalLastName
}

// AuthoritativeRole is the role usable for access decisions, empty while the
// application is not approved.
func (v Volunteer) AuthoritativeRole() roles.Role {
	if v.ApplicationStatus != ApplicationApproved {
		return ""
	}
	return v.Role
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type Task struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	VolunteerID  snowflake.ID `gorm:"not null;index" json:"volunteer_id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `gorm:"type:varchar(16);not null" json:"status"`
	AssignedDate time.Time    `gorm:"not null" json:"assigned_date"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	AssignedBy   string       `gorm:"type:varchar(64);not null" json:"assigned_by"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

func (Task) TableName() string { return "volunteer_tasks" }
