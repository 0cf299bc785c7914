package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	clock *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Receipts: idempotency.NewStore(),
	})
	return fixture{db: db, node: node, svc: svc, clock: fake}
}

func (f fixture) volunteer(t *testing.T, role roles.Role, status volunteerdomain.ApplicationStatus) string {
	t.Helper()
	now := f.clock.Now()
	v := volunteerdomain.Volunteer{
		ID:                f.node.Generate(),
		LegalFirstName:    "Dana",
		LegalLastName:     "Reyes",
		Email:             "dana@example.org",
		AppliedRole:       role,
		ApplicationStatus: status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if status == volunteerdomain.ApplicationApproved {
		v.Role = role
	}
	require.NoError(t, f.db.Omit("Tasks", "ComplianceSteps").Create(&v).Error)
	return v.ID.String()
}

func (f fixture) boardMember(t *testing.T) string {
	return f.volunteer(t, roles.BoardMember, volunteerdomain.ApplicationApproved)
}

func TestGiveOrGetScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.boardMember(t)

	_, err := f.svc.SetGoal(ctx, id, 5000)
	require.NoError(t, err)
	_, err = f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: id, Amount: 250, Type: "personal"})
	require.NoError(t, err)
	_, err = f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: id, Amount: 100, Type: "fundraised", Date: "2026-03-01"})
	require.NoError(t, err)

	progress, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, progress.Goal)
	assert.EqualValues(t, 250, progress.PersonalContribution)
	assert.EqualValues(t, 100, progress.Fundraised)
	assert.EqualValues(t, 350, progress.Raised)
	assert.EqualValues(t, 4650, progress.Remaining())
	assert.Len(t, progress.Donations, 2)

	result, err := f.svc.Reconcile(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Balanced)
	assert.EqualValues(t, 350, result.Computed.Raised)
}

func TestDonationReplayCountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.boardMember(t)

	req := domain.LogDonationRequest{PersonID: id, Amount: 500, Type: "personal", IdempotencyKey: "gala-2026"}
	first, err := f.svc.LogDonation(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.LogDonation(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	progress, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 500, progress.Raised)
	assert.Len(t, progress.Donations, 1)
}

func TestDonationKeyIsScopedToVolunteer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.boardMember(t)
	b := f.boardMember(t)

	first, err := f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: a, Amount: 250, Type: "personal", IdempotencyKey: "retry-1"})
	require.NoError(t, err)
	second, err := f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: b, Amount: 900, Type: "personal", IdempotencyKey: "retry-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, b, second.VolunteerID.String())

	progress, err := f.svc.Get(ctx, b)
	require.NoError(t, err)
	assert.EqualValues(t, 900, progress.Raised)
	assert.Len(t, progress.Donations, 1)

	progress, err = f.svc.Get(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 250, progress.Raised)
}

func TestDonationRejectsOverlongKey(t *testing.T) {
	f := newFixture(t)
	id := f.boardMember(t)

	_, err := f.svc.LogDonation(context.Background(), domain.LogDonationRequest{
		PersonID: id, Amount: 10, Type: "personal", IdempotencyKey: strings.Repeat("k", 129),
	})
	assert.ErrorIs(t, err, idempotency.ErrKeyTooLong)

	progress, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, progress.Donations)
}

func TestDonationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.boardMember(t)

	_, err := f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: id, Amount: 0, Type: "personal"})
	assert.ErrorIs(t, err, domain.ErrInvalidDonationAmount)
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)

	_, err = f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: id, Amount: 10, Type: "pledge"})
	assert.ErrorIs(t, err, domain.ErrInvalidDonationType)

	_, err = f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: id, Amount: 10, Type: "personal", Date: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.SetGoal(ctx, id, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidGoal)
}

func TestLedgerRequiresApprovedGovernanceRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	core := f.volunteer(t, roles.CoreVolunteer, volunteerdomain.ApplicationApproved)
	_, err := f.svc.LogDonation(ctx, domain.LogDonationRequest{PersonID: core, Amount: 10, Type: "personal"})
	assert.ErrorIs(t, err, domain.ErrNotBoardMember)

	applicant := f.volunteer(t, roles.BoardMember, volunteerdomain.ApplicationPendingReview)
	_, err = f.svc.SetGoal(ctx, applicant, 1000)
	assert.ErrorIs(t, err, domain.ErrNotBoardMember)

	_, err = f.svc.Get(ctx, "987654321")
	assert.ErrorIs(t, err, domain.ErrVolunteerNotFound)
}

func TestOutreachIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.boardMember(t)

	prospect, err := f.svc.AddProspect(ctx, domain.AddProspectRequest{PersonID: id, Name: "Acme Foundation", Type: "foundation", Amount: 2500})
	require.NoError(t, err)
	assert.Equal(t, domain.ProspectIdentified, prospect.Status)

	updated, err := f.svc.LogOutreach(ctx, prospect.ID.String(), domain.OutreachRequest{Method: "email"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProspectContacted, updated.Status)
	assert.Len(t, updated.OutreachLog, 1)

	_, err = f.svc.UpdateProspectStatus(ctx, prospect.ID.String(), "pending")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	updated, err = f.svc.LogOutreach(ctx, prospect.ID.String(), domain.OutreachRequest{Method: "call", Notes: "Left voicemail"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProspectPending, updated.Status)
	assert.Len(t, updated.OutreachLog, 2)
	require.NotNil(t, updated.LastContact)
	assert.True(t, updated.LastContact.Equal(f.clock.Now()))

	_, err = f.svc.LogOutreach(ctx, prospect.ID.String(), domain.OutreachRequest{Method: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidOutreachMethod)

	progress, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, progress.Raised)
}

func TestProspectValidationAndRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.boardMember(t)

	_, err := f.svc.AddProspect(ctx, domain.AddProspectRequest{PersonID: id, Name: "Acme", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidProspectAmount)

	_, err = f.svc.AddProspect(ctx, domain.AddProspectRequest{PersonID: id, Name: " ", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidProspectName)

	_, err = f.svc.AddProspect(ctx, domain.AddProspectRequest{PersonID: id, Name: "Acme", Type: "alien", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidProspectType)

	prospect, err := f.svc.AddProspect(ctx, domain.AddProspectRequest{PersonID: id, Name: "Acme", Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.ProspectIndividual, prospect.Type)

	_, err = f.svc.UpdateProspectStatus(ctx, prospect.ID.String(), "won")
	assert.ErrorIs(t, err, domain.ErrInvalidProspectStatus)

	require.NoError(t, f.svc.RemoveProspect(ctx, prospect.ID.String()))
	assert.ErrorIs(t, f.svc.RemoveProspect(ctx, prospect.ID.String()), domain.ErrProspectNotFound)
}
