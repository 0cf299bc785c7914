package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/masking"
	auditrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/repository"
	auditservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	compliancerepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/repository"
	complianceservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, event notification.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fixture struct {
	db         *gorm.DB
	svc        domain.Service
	compliance compliancedomain.Service
	clock      *clock.FakeClock
}

func newFixture(t *testing.T, notifier notification.Notifier) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  auditrepository.Provide(),
	})
	complianceRepo := compliancerepository.Provide()
	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fake,
		Repo:           repository.Provide(),
		ComplianceRepo: complianceRepo,
		Notifier:       notifier,
		AuditSvc:       auditSvc,
	})
	compliance := complianceservice.New(complianceservice.Params{
		DB:    db,
		Log:   log,
		Clock: fake,
		Repo:  complianceRepo,
	})
	return fixture{db: db, svc: svc, compliance: compliance, clock: fake}
}

func staffCtx() context.Context {
	return requestctx.WithActor(context.Background(), requestctx.Actor{ID: "p-coordinator", Name: "Coordinator"})
}

func (f fixture) apply(t *testing.T, role string) domain.Volunteer {
	t.Helper()
	v, err := f.svc.SubmitApplication(context.Background(), domain.SubmitApplicationRequest{
		Identity: domain.Identity{
			LegalFirstName: "Maria",
			LegalLastName:  "Lopez",
			PreferredName:  "Mari",
			Email:          " Maria@Example.org ",
		},
		AppliedRole: role,
		RoleAssessment: []domain.AssessmentAnswer{
			{Question: "Why do you want to serve?", Answer: "Community health"},
			{Question: "  "},
		},
	})
	require.NoError(t, err)
	return v
}

func stepStatuses(steps []compliancedomain.Step) map[compliancedomain.StepID]compliancedomain.StepStatus {
	out := make(map[compliancedomain.StepID]compliancedomain.StepStatus, len(steps))
	for _, step := range steps {
		out[step.StepID] = step.Status
	}
	return out
}

func TestSubmitApplicationStartsPending(t *testing.T) {
	f := newFixture(t, nil)
	v := f.apply(t, "Board Member")

	assert.Equal(t, domain.ApplicationPendingReview, v.ApplicationStatus)
	assert.Equal(t, roles.BoardMember, v.AppliedRole)
	assert.Empty(t, v.Role)
	assert.Empty(t, v.AuthoritativeRole())
	assert.Equal(t, "maria@example.org", v.Email)
	assert.Len(t, v.RoleAssessment, 1)

	stored, err := f.svc.Get(context.Background(), v.ID.String())
	require.NoError(t, err)
	statuses := stepStatuses(stored.ComplianceSteps)
	assert.Equal(t, compliancedomain.StepStatusCompleted, statuses[compliancedomain.StepApplication])
	assert.Equal(t, compliancedomain.StepStatusPending, statuses[compliancedomain.StepBackgroundCheck])
	assert.Contains(t, statuses, compliancedomain.StepBoardCommitment)
}

func TestSubmitApplicationValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.SubmitApplication(ctx, domain.SubmitApplicationRequest{
		Identity:    domain.Identity{LegalFirstName: "A", LegalLastName: "B", Email: "nope"},
		AppliedRole: "Core Volunteer",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.SubmitApplication(ctx, domain.SubmitApplicationRequest{
		Identity:    domain.Identity{LegalLastName: "B", Email: "a@b.org"},
		AppliedRole: "Core Volunteer",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.SubmitApplication(ctx, domain.SubmitApplicationRequest{
		Identity:    domain.Identity{LegalFirstName: "A", LegalLastName: "B", Email: "a@b.org"},
		AppliedRole: "Wizard",
	})
	assert.ErrorIs(t, err, roles.ErrUnknownRole)
}

func TestApprovedBoardMemberStillNeedsBackgroundCheck(t *testing.T) {
	notifier := &notifierMock{}
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e notification.Event) bool {
		return e.Type == notification.EventApplicationReviewed && e.Data["decision"] == "approved"
	})).Return(nil).Once()

	f := newFixture(t, notifier)
	ctx := staffCtx()
	v := f.apply(t, "Board Member")

	reviewed, err := f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "approve", Notes: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, reviewed.ApplicationStatus)
	assert.Equal(t, roles.BoardMember, reviewed.AuthoritativeRole())
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "p-coordinator", *reviewed.ReviewedBy)

	result, err := f.compliance.Eligibility(ctx, v.ID.String(), string(compliancedomain.CapabilityVolunteerAtEvent))
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Contains(t, result.Missing, compliancedomain.StepBackgroundCheck)

	for _, step := range []compliancedomain.StepID{
		compliancedomain.StepBackgroundCheck,
		compliancedomain.StepTraining,
		compliancedomain.StepOrientation,
	} {
		_, err := f.compliance.SetStepStatus(ctx, compliancedomain.SetStepStatusRequest{
			PersonID: v.ID.String(),
			StepID:   string(step),
			Status:   "completed",
		})
		require.NoError(t, err)
	}
	result, err = f.compliance.Eligibility(ctx, v.ID.String(), string(compliancedomain.CapabilityVolunteerAtEvent))
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	notifier.AssertExpectations(t)
}

func TestReviewIsTerminal(t *testing.T) {
	f := newFixture(t, notification.NoOpNotifier{})
	ctx := staffCtx()
	v := f.apply(t, "Core Volunteer")

	_, err := f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "reject", Notes: "Incomplete"})
	require.NoError(t, err)

	_, err = f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "approve"})
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	_, err = f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidReviewAction)

	stored, err := f.svc.Get(ctx, v.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, stored.ApplicationStatus)
	assert.Empty(t, stored.AuthoritativeRole())
}

func TestReviewUnknownVolunteer(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.ReviewApplication(staffCtx(), domain.ReviewRequest{ID: "42", Action: "approve"})
	assert.ErrorIs(t, err, domain.ErrVolunteerNotFound)

	_, err = f.svc.ReviewApplication(staffCtx(), domain.ReviewRequest{ID: "abc", Action: "approve"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestAddVolunteerMasksContactInAudit(t *testing.T) {
	f := newFixture(t, nil)
	v, err := f.svc.AddVolunteer(staffCtx(), domain.AddVolunteerRequest{
		Identity: domain.Identity{
			LegalFirstName: "Sam",
			LegalLastName:  "Okafor",
			Email:          "sam@example.org",
			Phone:          "555-123-4567",
		},
		Role: "events_coordinator",
		Tags: []string{"Spanish", "spanish ", "driver"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, v.ApplicationStatus)
	assert.Equal(t, roles.EventsCoordinator, v.AuthoritativeRole())
	assert.Equal(t, []string{"spanish", "driver"}, []string(v.Tags))

	var logs []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "volunteer.added").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, masking.MaskContact("sam@example.org"), logs[0].Metadata["email"])
	assert.NotEqual(t, "555-123-4567", logs[0].Metadata["phone"])
}

func TestTasksRequireApprovedVolunteer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := staffCtx()
	v := f.apply(t, "Core Volunteer")

	_, err := f.svc.AssignTask(ctx, domain.AssignTaskRequest{VolunteerID: v.ID.String(), Title: "Pack kits"})
	assert.ErrorIs(t, err, domain.ErrVolunteerNotActive)

	_, err = f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "approve"})
	require.NoError(t, err)

	_, err = f.svc.AssignTask(ctx, domain.AssignTaskRequest{VolunteerID: v.ID.String(), Title: "Pack kits", DueDate: "next week"})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDate)

	task, err := f.svc.AssignTask(ctx, domain.AssignTaskRequest{VolunteerID: v.ID.String(), Title: "Pack kits", DueDate: "2026-03-20"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, task.Status)
	assert.Equal(t, "p-coordinator", task.AssignedBy)

	done, err := f.svc.CompleteTask(ctx, v.ID.String(), task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = f.svc.CompleteTask(ctx, v.ID.String(), task.ID.String())
	assert.ErrorIs(t, err, domain.ErrTaskAlreadyCompleted)
}

func TestProfileUpdates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := staffCtx()
	v := f.apply(t, "Core Volunteer")
	_, err := f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: v.ID.String(), Action: "approve"})
	require.NoError(t, err)

	_, err = f.svc.LogHours(ctx, v.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidHours)

	_, err = f.svc.LogHours(ctx, v.ID.String(), 2.5)
	require.NoError(t, err)
	updated, err := f.svc.LogHours(ctx, v.ID.String(), 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, updated.HoursContributed, 0.0001)

	_, err = f.svc.SetOnboardingProgress(ctx, v.ID.String(), 101)
	assert.ErrorIs(t, err, domain.ErrInvalidProgress)
	updated, err = f.svc.SetOnboardingProgress(ctx, v.ID.String(), 60)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.OnboardingProgress)

	updated, err = f.svc.SetTags(ctx, v.ID.String(), []string{"  Outreach", "OUTREACH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outreach"}, []string(updated.Tags))
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := staffCtx()
	pending := f.apply(t, "Core Volunteer")
	approved := f.apply(t, "Core Volunteer")
	_, err := f.svc.ReviewApplication(ctx, domain.ReviewRequest{ID: approved.ID.String(), Action: "approve"})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListRequest{ApplicationStatus: "pendingReview"})
	require.NoError(t, err)
	require.Len(t, resp.Volunteers, 1)
	assert.Equal(t, pending.ID, resp.Volunteers[0].ID)

	_, err = f.svc.List(ctx, domain.ListRequest{ApplicationStatus: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidApplicationStatus)
}
