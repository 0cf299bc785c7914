package service

import (
	"context"
	"testing"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, domain.Service, *clock.FakeClock) {
	t.Helper()
	db := testutil.OpenDB(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return db, svc, fake
}

// seedPerson stores a volunteer together with the catalogue rows for the
// role it applied for.
func seedPerson(t *testing.T, db *gorm.DB, role roles.Role, status volunteerdomain.ApplicationStatus) string {
	t.Helper()
	node := testutil.Node(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	v := volunteerdomain.Volunteer{
		ID:                node.Generate(),
		LegalFirstName:    "Lee",
		LegalLastName:     "Chen",
		Email:             "lee@example.org",
		AppliedRole:       role,
		ApplicationStatus: status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if status == volunteerdomain.ApplicationApproved {
		v.Role = role
	}
	require.NoError(t, db.Omit("Tasks", "ComplianceSteps").Create(&v).Error)
	steps := domain.NewSteps(v.ID, domain.RequiredSteps(role), now, domain.StepApplication)
	require.NoError(t, repository.Provide().InsertMissing(context.Background(), db, steps))
	return v.ID.String()
}

func TestSetStepStatusOutsideCatalogue(t *testing.T) {
	db, svc, _ := setup(t)
	id := seedPerson(t, db, roles.CoreVolunteer, volunteerdomain.ApplicationApproved)

	_, err := svc.SetStepStatus(context.Background(), domain.SetStepStatusRequest{
		PersonID: id,
		StepID:   string(domain.StepMedicalLicense),
		Status:   "completed",
	})
	assert.ErrorIs(t, err, domain.ErrStepNotInCatalogue)
	assert.ErrorIs(t, err, apperr.ErrInvalidStep)
}

func TestSetStepStatusValidation(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()
	id := seedPerson(t, db, roles.CoreVolunteer, volunteerdomain.ApplicationApproved)

	_, err := svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: id, StepID: "training", Status: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidStepStatus)

	_, err = svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: "77", StepID: "training", Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrPersonNotFound)

	_, err = svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: "x", StepID: "training", Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrInvalidPersonID)
}

func TestSignedFormNeedsDocument(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()
	id := seedPerson(t, db, roles.BoardMember, volunteerdomain.ApplicationApproved)

	_, err := svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: id, StepID: "boardCommitment", Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrDocumentRequired)

	path := "forms/board-commitment.pdf"
	step, err := svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: id, StepID: "boardCommitment", Status: "completed", DocumentPath: &path})
	require.NoError(t, err)
	assert.Equal(t, domain.StepStatusCompleted, step.Status)
	require.NotNil(t, step.DocumentPath)
	assert.Equal(t, path, *step.DocumentPath)

	// the stored document carries over to later status changes
	step, err = svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: id, StepID: "boardCommitment", Status: "verified"})
	require.NoError(t, err)
	assert.Equal(t, domain.StepStatusVerified, step.Status)
}

func TestEligibilityUsesAuthoritativeRole(t *testing.T) {
	db, svc, _ := setup(t)
	ctx := context.Background()
	id := seedPerson(t, db, roles.CoreVolunteer, volunteerdomain.ApplicationPendingReview)

	for _, step := range []string{"backgroundCheck", "training", "orientation"} {
		_, err := svc.SetStepStatus(ctx, domain.SetStepStatusRequest{PersonID: id, StepID: step, Status: "completed"})
		require.NoError(t, err)
	}

	// every step is satisfied but there is no granted role yet
	result, err := svc.Eligibility(ctx, id, "volunteer_at_event")
	require.NoError(t, err)
	assert.False(t, result.Eligible)

	personID, err := snowflake.ParseString(id)
	require.NoError(t, err)
	require.NoError(t, db.Model(&volunteerdomain.Volunteer{}).Where("id = ?", personID).Updates(map[string]any{
		"application_status": volunteerdomain.ApplicationApproved,
		"role":               roles.CoreVolunteer,
	}).Error)

	result, err = svc.Eligibility(ctx, id, "volunteer_at_event")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.Missing)

	result, err = svc.Eligibility(ctx, id, "deploy_clinical_event")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Contains(t, result.Missing, domain.StepMedicalLicense)

	_, err = svc.Eligibility(ctx, id, "fly_helicopter")
	assert.ErrorIs(t, err, domain.ErrUnknownCapability)
}

func TestChecklistFollowsAppliedRoleBeforeApproval(t *testing.T) {
	db, svc, _ := setup(t)
	id := seedPerson(t, db, roles.LicensedMedicalProfessional, volunteerdomain.ApplicationPendingReview)

	checklist, err := svc.Checklist(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(roles.LicensedMedicalProfessional), checklist.Role)
	assert.Len(t, checklist.Steps, len(checklist.Required))

	found := false
	for _, step := range checklist.Steps {
		if step.StepID == domain.StepApplication {
			found = true
			assert.Equal(t, domain.StepStatusCompleted, step.Status)
		}
	}
	assert.True(t, found)
}
