package domain

import (
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
)

type Capability string

const (
	CapabilityDeployClinicalEvent Capability = "deploy_clinical_event"
	CapabilityVolunteerAtEvent    Capability = "volunteer_at_event"
	CapabilityAccessPatientData   Capability = "access_patient_data"
	CapabilityBoardVote           Capability = "board_vote"
)

var capabilityRequirements = map[Capability][]StepID{
	CapabilityDeployClinicalEvent: {
		StepApplication,
		StepBackgroundCheck,
		StepHIPAATraining,
		StepTraining,
		StepOrientation,
		StepMedicalLicense,
		StepMalpracticeInsurance,
		StepCPRCertification,
	},
	CapabilityVolunteerAtEvent: {
		StepApplication,
		StepBackgroundCheck,
		StepTraining,
		StepOrientation,
	},
	CapabilityAccessPatientData: {
		StepHIPAATraining,
		StepBackgroundCheck,
	},
	CapabilityBoardVote: {
		StepBoardCommitment,
		StepConflictOfInterest,
		StepConfidentialityAgreement,
		StepCodeOfConduct,
	},
}

func ParseCapability(value string) (Capability, error) {
	c := Capability(strings.TrimSpace(value))
	if _, ok := capabilityRequirements[c]; !ok {
		return "", ErrUnknownCapability
	}
	return c, nil
}

// RequirementsFor returns the step ids gating capability.
func RequirementsFor(c Capability) []StepID {
	reqs := capabilityRequirements[c]
	out := make([]StepID, len(reqs))
	copy(out, reqs)
	return out
}

type Eligibility struct {
	Capability Capability `json:"capability"`
	Eligible   bool       `json:"eligible"`
	Missing    []StepID   `json:"missing"`
}

// Evaluate checks capability against the given snapshot of steps. A required
// step is missing when it is outside role's catalogue, absent from steps, or
// not satisfied. Unknown capabilities are never eligible.
func Evaluate(c Capability, role roles.Role, steps []Step) Eligibility {
	result := Eligibility{Capability: c, Missing: []StepID{}}
	reqs, ok := capabilityRequirements[c]
	if !ok {
		return result
	}
	byID := make(map[StepID]Step, len(steps))
	for _, step := range steps {
		byID[step.StepID] = step
	}
	for _, id := range reqs {
		if _, applies := Definition(role, id); !applies {
			result.Missing = append(result.Missing, id)
			continue
		}
		step, found := byID[id]
		if !found || !IsSatisfied(step) {
			result.Missing = append(result.Missing, id)
		}
	}
	result.Eligible = len(result.Missing) == 0
	return result
}

func EligibilityFor(c Capability, role roles.Role, steps []Step) bool {
	return Evaluate(c, role, steps).Eligible
}
