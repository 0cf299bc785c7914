// Package roles holds the closed set of volunteer roles and the traits that
// drive compliance catalogues and access policy.
package roles

import (
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
)

type Role string

const (
	CoreVolunteer                Role = "Core Volunteer"
	BoardMember                  Role = "Board Member"
	CommunityAdvisoryBoard       Role = "Community Advisory Board"
	LicensedMedicalProfessional  Role = "Licensed Medical Professional"
	MedicalAdmin                 Role = "Medical Admin"
	BehavioralHealthProfessional Role = "Behavioral Health Professional"
	OutreachLead                 Role = "Outreach & Engagement Lead"
	EventsCoordinator            Role = "Events Coordinator"
	VolunteerCoordinator         Role = "Volunteer Coordinator"
	Admin                        Role = "Admin"
)

var ErrUnknownRole = apperr.New(apperr.ErrValidation, "invalid_role")

// Traits classifies a role.
type Traits struct {
	Slug       string
	Governance bool
	Clinical   bool
}

var traits = map[Role]Traits{
	CoreVolunteer:                {Slug: "core_volunteer"},
	BoardMember:                  {Slug: "board_member", Governance: true},
	CommunityAdvisoryBoard:       {Slug: "community_advisory_board", Governance: true},
	LicensedMedicalProfessional:  {Slug: "licensed_medical_professional", Clinical: true},
	MedicalAdmin:                 {Slug: "medical_admin", Clinical: true},
	BehavioralHealthProfessional: {Slug: "behavioral_health_professional", Clinical: true},
	OutreachLead:                 {Slug: "outreach_lead"},
	EventsCoordinator:            {Slug: "events_coordinator"},
	VolunteerCoordinator:         {Slug: "volunteer_coordinator"},
	Admin:                        {Slug: "admin"},
}

// All returns every known role in declaration order.
func All() []Role {
	return []Role{
		CoreVolunteer,
		BoardMember,
		CommunityAdvisoryBoard,
		LicensedMedicalProfessional,
		MedicalAdmin,
		BehavioralHealthProfessional,
		OutreachLead,
		EventsCoordinator,
		VolunteerCoordinator,
		Admin,
	}
}

// Parse resolves a display name or slug, case-insensitively.
func Parse(value string) (Role, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrUnknownRole
	}
	for role, t := range traits {
		if strings.EqualFold(string(role), value) || strings.EqualFold(t.Slug, value) {
			return role, nil
		}
	}
	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	_, ok := traits[r]
	return ok
}

func (r Role) Traits() Traits {
	return traits[r]
}

func (r Role) Slug() string {
	return traits[r].Slug
}

// IsGovernance reports whether the role carries board signed-form requirements.
func (r Role) IsGovernance() bool {
	return traits[r].Governance
}

// IsClinical reports whether the role carries clinical credential requirements.
func (r Role) IsClinical() bool {
	return traits[r].Clinical
}
