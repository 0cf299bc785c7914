package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectApplication = "application"
	ObjectVolunteer   = "volunteer"
	ObjectTask        = "task"
	ObjectCompliance  = "compliance"
	ObjectMeeting     = "meeting"
	ObjectMinutes     = "minutes"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionApplicationReview = "application.review"

	ActionVolunteerCreate = "volunteer.create"
	ActionVolunteerUpdate = "volunteer.update"

	ActionTaskAssign = "task.assign"

	ActionComplianceVerify = "compliance.verify"

	ActionMeetingSchedule = "meeting.schedule"
	ActionMeetingEdit     = "meeting.edit"
	ActionMeetingCancel   = "meeting.cancel"
	ActionMeetingComplete = "meeting.complete"

	ActionMinutesApprove         = "minutes.approve"
	ActionMinutesRequestRevision = "minutes.request_revision"
	ActionMinutesReopen          = "minutes.reopen"

	ActionAuditLogView = "audit_log.view"
)

const systemSubject = "role:system"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidObject   = errors.New("invalid_object")
	ErrInvalidAction   = errors.New("invalid_action")
)

type Service interface {
	// Authorize checks the acting person in ctx against object and action.
	Authorize(ctx context.Context, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, object, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	actor, ok := requestctx.ActorFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	subject, err := subjectFor(actor)
	if err != nil {
		s.auditDenied(ctx, actor, object, action)
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("actor_id", actor.ID),
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		s.auditDenied(ctx, actor, object, action)
		return ErrForbidden
	}
	return nil
}

// subjectFor maps an actor to its casbin subject. Unknown role strings are
// refused rather than treated as a least-privileged role.
func subjectFor(actor requestctx.Actor) (string, error) {
	if actor.ID == "system" {
		return systemSubject, nil
	}
	if strings.TrimSpace(actor.Role) == "" {
		return "", ErrForbidden
	}
	role, err := roles.Parse(actor.Role)
	if err != nil {
		return "", ErrForbidden
	}
	return fmt.Sprintf("role:%s", role.Slug()), nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor requestctx.Actor, object, action string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, nil, "authorization.denied", "authorization", object, map[string]any{
		"object": object,
		"action": action,
		"role":   actor.Role,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Volunteer management
		{"role:volunteer_manager", ObjectApplication, ActionApplicationReview},
		{"role:volunteer_manager", ObjectVolunteer, ActionVolunteerCreate},
		{"role:volunteer_manager", ObjectVolunteer, ActionVolunteerUpdate},
		{"role:volunteer_manager", ObjectTask, ActionTaskAssign},
		{"role:volunteer_manager", ObjectCompliance, ActionComplianceVerify},

		// Clinical credential verification
		{"role:clinical_manager", ObjectCompliance, ActionComplianceVerify},

		// Meetings and minutes
		{"role:meeting_manager", ObjectMeeting, ActionMeetingSchedule},
		{"role:meeting_manager", ObjectMeeting, ActionMeetingEdit},
		{"role:meeting_manager", ObjectMeeting, ActionMeetingCancel},
		{"role:meeting_manager", ObjectMeeting, ActionMeetingComplete},
		{"role:meeting_manager", ObjectMinutes, ActionMinutesApprove},
		{"role:meeting_manager", ObjectMinutes, ActionMinutesRequestRevision},
		{"role:meeting_manager", ObjectMinutes, ActionMinutesReopen},

		// Events staff run meetings but do not approve minutes
		{"role:events_coordinator", ObjectMeeting, ActionMeetingSchedule},
		{"role:events_coordinator", ObjectMeeting, ActionMeetingEdit},
		{"role:events_coordinator", ObjectMeeting, ActionMeetingCancel},
		{"role:events_coordinator", ObjectMeeting, ActionMeetingComplete},
		{"role:events_coordinator", ObjectTask, ActionTaskAssign},

		{"role:admin", "*", "*"},
		{systemSubject, "*", "*"},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	groupings := [][]string{
		{"role:volunteer_coordinator", "role:volunteer_manager"},
		{"role:board_member", "role:meeting_manager"},
		{"role:medical_admin", "role:clinical_manager"},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
