package domain

import "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"

type StepID string

const (
	StepApplication     StepID = "application"
	StepBackgroundCheck StepID = "backgroundCheck"
	StepHIPAATraining   StepID = "hipaaTraining"
	StepTraining        StepID = "training"
	StepOrientation     StepID = "orientation"

	StepBoardCommitment          StepID = "boardCommitment"
	StepConflictOfInterest       StepID = "conflictOfInterest"
	StepConfidentialityAgreement StepID = "confidentialityAgreement"
	StepCodeOfConduct            StepID = "codeOfConduct"

	StepMedicalLicense       StepID = "medicalLicense"
	StepMalpracticeInsurance StepID = "malpracticeInsurance"
	StepCPRCertification     StepID = "cprCertification"
	StepImmunizationRecords  StepID = "immunizationRecords"
)

// StepDefinition describes one catalogue entry. Steps with RequiresDocument
// are signed forms or credentials and cannot be satisfied without a stored
// document path.
type StepDefinition struct {
	ID               StepID `json:"id"`
	Label            string `json:"label"`
	RequiresDocument bool   `json:"requires_document"`
}

var baseCatalogue = []StepDefinition{
	{ID: StepApplication, Label: "Application Submitted"},
	{ID: StepBackgroundCheck, Label: "Background Check"},
	{ID: StepHIPAATraining, Label: "HIPAA Training"},
	{ID: StepTraining, Label: "Core Volunteer Training"},
	{ID: StepOrientation, Label: "Orientation"},
}

var boardForms = []StepDefinition{
	{ID: StepBoardCommitment, Label: "Board Commitment Agreement", RequiresDocument: true},
	{ID: StepConflictOfInterest, Label: "Conflict of Interest Disclosure", RequiresDocument: true},
	{ID: StepConfidentialityAgreement, Label: "Confidentiality Agreement", RequiresDocument: true},
	{ID: StepCodeOfConduct, Label: "Code of Conduct Acknowledgment", RequiresDocument: true},
}

var clinicalDocuments = []StepDefinition{
	{ID: StepMedicalLicense, Label: "Medical License", RequiresDocument: true},
	{ID: StepMalpracticeInsurance, Label: "Malpractice Insurance", RequiresDocument: true},
	{ID: StepCPRCertification, Label: "CPR / BLS Certification", RequiresDocument: true},
	{ID: StepImmunizationRecords, Label: "Immunization Records", RequiresDocument: true},
}

// RequiredSteps returns the catalogue that applies to role. Unknown roles get
// the base catalogue only.
func RequiredSteps(role roles.Role) []StepDefinition {
	steps := make([]StepDefinition, 0, len(baseCatalogue)+len(boardForms)+len(clinicalDocuments))
	steps = append(steps, baseCatalogue...)
	if role.IsGovernance() {
		steps = append(steps, boardForms...)
	}
	if role.IsClinical() {
		steps = append(steps, clinicalDocuments...)
	}
	return steps
}

// Definition looks up stepID within the catalogue for role.
func Definition(role roles.Role, stepID StepID) (StepDefinition, bool) {
	for _, def := range RequiredSteps(role) {
		if def.ID == stepID {
			return def, true
		}
	}
	return StepDefinition{}, false
}

// SelfReportable reports whether a volunteer may mark stepID completed on
// their own. Only signed forms and uploaded credentials qualify; every other
// step is recorded by a reviewer.
func SelfReportable(stepID StepID) bool {
	for _, group := range [][]StepDefinition{boardForms, clinicalDocuments} {
		for _, def := range group {
			if def.ID == stepID {
				return def.RequiresDocument
			}
		}
	}
	return false
}
