package authorization

import (
	"context"
	"testing"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer(testutil.OpenDB(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func as(role string) context.Context {
	return requestctx.WithActor(context.Background(), requestctx.Actor{ID: "p-1", Name: "Pat", Role: role})
}

func TestAuthorizeRolePolicies(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name    string
		role    string
		object  string
		action  string
		allowed bool
	}{
		{"coordinator reviews applications", "Volunteer Coordinator", ObjectApplication, ActionApplicationReview, true},
		{"board member approves minutes", "board_member", ObjectMinutes, ActionMinutesApprove, true},
		{"events coordinator schedules meetings", "Events Coordinator", ObjectMeeting, ActionMeetingSchedule, true},
		{"events coordinator cannot approve minutes", "Events Coordinator", ObjectMinutes, ActionMinutesApprove, false},
		{"medical admin verifies credentials", "Medical Admin", ObjectCompliance, ActionComplianceVerify, true},
		{"core volunteer cannot review", "Core Volunteer", ObjectApplication, ActionApplicationReview, false},
		{"board member cannot review applications", "Board Member", ObjectApplication, ActionApplicationReview, false},
		{"admin can view audit logs", "Admin", ObjectAuditLog, ActionAuditLogView, true},
		{"coordinator cannot view audit logs", "Volunteer Coordinator", ObjectAuditLog, ActionAuditLogView, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(as(tc.role), tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeRejectsAnonymousAndUnknownRoles(t *testing.T) {
	svc := newTestService(t)

	err := svc.Authorize(context.Background(), ObjectMeeting, ActionMeetingSchedule)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	err = svc.Authorize(as("Overlord"), ObjectMeeting, ActionMeetingSchedule)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Authorize(as(""), ObjectMeeting, ActionMeetingSchedule)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Authorize(as("Admin"), " ", ActionMeetingSchedule)
	assert.ErrorIs(t, err, ErrInvalidObject)
}

func TestAuthorizeSystemActor(t *testing.T) {
	svc := newTestService(t)
	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{ID: "system"})
	assert.NoError(t, svc.Authorize(ctx, ObjectMinutes, ActionMinutesReopen))
}

func TestNewEnforcerIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	_, err := NewEnforcer(db)
	require.NoError(t, err)
	_, err = NewEnforcer(db)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("casbin_rule").Where("ptype = ? AND v0 = ?", "p", "role:admin").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
