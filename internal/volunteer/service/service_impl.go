package service

import (
	"context"
	"math"
	"strings"
	"time"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/masking"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	ComplianceRepo compliancedomain.Repository
	Notifier       notification.Notifier `optional:"true"`
	AuditSvc       auditdomain.Service   `optional:"true"`
	Metrics        *metrics.Metrics      `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	complianceRepo compliancedomain.Repository
	notifier       notification.Notifier
	auditSvc       auditdomain.Service
	metrics        *metrics.Metrics
}

func New(p Params) domain.Service {
	notifier := p.Notifier
	if notifier == nil {
		notifier = notification.NoOpNotifier{}
	}
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("volunteer.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		complianceRepo: p.ComplianceRepo,
		notifier:       notifier,
		auditSvc:       p.AuditSvc,
		metrics:        p.Metrics,
	}
}

// SubmitApplication records a self-submitted application. The applied role
// only selects the initial compliance catalogue; it grants nothing.
func (s *Service) SubmitApplication(ctx context.Context, req domain.SubmitApplicationRequest) (volunteer domain.Volunteer, err error) {
	defer func() { s.metrics.RecordCommand("volunteer.submit_application", metrics.Outcome(err)) }()

	identity, err := validateIdentity(req.Identity)
	if err != nil {
		return domain.Volunteer{}, err
	}
	appliedRole, err := roles.Parse(req.AppliedRole)
	if err != nil {
		return domain.Volunteer{}, err
	}

	now := s.clock.Now().UTC()
	volunteer = s.newVolunteer(identity, now)
	volunteer.AppliedRole = appliedRole
	volunteer.ApplicationStatus = domain.ApplicationPendingReview
	volunteer.RoleAssessment = cleanAssessment(req.RoleAssessment)
	volunteer.ResumePath = optionalString(req.ResumePath)

	steps := compliancedomain.NewSteps(volunteer.ID, compliancedomain.RequiredSteps(appliedRole), now, compliancedomain.StepApplication)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &volunteer); err != nil {
			return err
		}
		if err := s.complianceRepo.InsertMissing(ctx, tx, steps); err != nil {
			return err
		}
		return s.audit(ctx, tx, "application.submitted", volunteer.ID, map[string]any{
			"applied_role": string(appliedRole),
		})
	})
	if err != nil {
		return domain.Volunteer{}, err
	}

	s.log.Info("application submitted",
		zap.String("volunteer_id", volunteer.ID.String()),
		zap.String("applied_role", string(appliedRole)),
	)
	volunteer.ComplianceSteps = steps
	return volunteer, nil
}

func (s *Service) ReviewApplication(ctx context.Context, req domain.ReviewRequest) (volunteer domain.Volunteer, err error) {
	defer func() { s.metrics.RecordCommand("volunteer.review_application", metrics.Outcome(err)) }()

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Volunteer{}, err
	}
	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		return domain.Volunteer{}, err
	}
	notes := strings.TrimSpace(req.Notes)
	reviewer := requestctx.ActorID(ctx)

	var reviewed domain.Volunteer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrVolunteerNotFound
		}
		next, ok := domain.NextApplicationStatus(current.ApplicationStatus, action)
		if !ok {
			return domain.ErrAlreadyReviewed
		}

		now := s.clock.Now().UTC()
		current.ApplicationStatus = next
		current.ReviewNotes = optionalString(notes)
		current.ReviewedBy = &reviewer
		current.ReviewedAt = &now
		current.UpdatedAt = now

		if next == domain.ApplicationApproved {
			current.Role = current.AppliedRole
			// extend the catalogue to the granted role; existing step statuses stay
			defs := compliancedomain.RequiredSteps(current.Role)
			if err := s.complianceRepo.InsertMissing(ctx, tx, compliancedomain.NewSteps(current.ID, defs, now)); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		reviewed = *current
		return s.audit(ctx, tx, "application."+string(next), current.ID, map[string]any{
			"action":       string(action),
			"notes":        notes,
			"applied_role": string(current.AppliedRole),
		})
	})
	if err != nil {
		return domain.Volunteer{}, err
	}

	s.metrics.RecordTransition("application", string(reviewed.ApplicationStatus))
	s.log.Info("application reviewed",
		zap.String("volunteer_id", id.String()),
		zap.String("decision", string(reviewed.ApplicationStatus)),
		zap.String("reviewed_by", reviewer),
	)
	s.notify(ctx, notification.Event{
		Type:      notification.EventApplicationReviewed,
		SubjectID: id.String(),
		Data: map[string]any{
			"name":         reviewed.DisplayName(),
			"applied_role": string(reviewed.AppliedRole),
			"decision":     string(reviewed.ApplicationStatus),
			"notes":        notes,
		},
	})
	return s.Get(ctx, id.String())
}

// AddVolunteer is the staff entry path; it skips review and the record is
// approved from the start.
func (s *Service) AddVolunteer(ctx context.Context, req domain.AddVolunteerRequest) (volunteer domain.Volunteer, err error) {
	defer func() { s.metrics.RecordCommand("volunteer.add", metrics.Outcome(err)) }()

	identity, err := validateIdentity(req.Identity)
	if err != nil {
		return domain.Volunteer{}, err
	}
	role, err := roles.Parse(req.Role)
	if err != nil {
		return domain.Volunteer{}, err
	}

	now := s.clock.Now().UTC()
	addedBy := requestctx.ActorID(ctx)
	volunteer = s.newVolunteer(identity, now)
	volunteer.AppliedRole = role
	volunteer.Role = role
	volunteer.ApplicationStatus = domain.ApplicationApproved
	volunteer.Tags = domain.NormalizeTags(req.Tags)
	volunteer.ReviewedBy = &addedBy
	volunteer.ReviewedAt = &now

	steps := compliancedomain.NewSteps(volunteer.ID, compliancedomain.RequiredSteps(role), now, compliancedomain.StepApplication)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &volunteer); err != nil {
			return err
		}
		if err := s.complianceRepo.InsertMissing(ctx, tx, steps); err != nil {
			return err
		}
		return s.audit(ctx, tx, "volunteer.added", volunteer.ID, masking.MaskFields(map[string]any{
			"role":  string(role),
			"email": volunteer.Email,
			"phone": volunteer.Phone,
		}, "email", "phone"))
	})
	if err != nil {
		return domain.Volunteer{}, err
	}

	s.log.Info("volunteer added",
		zap.String("volunteer_id", volunteer.ID.String()),
		zap.String("role", string(role)),
		zap.String("added_by", addedBy),
	)
	s.notify(ctx, notification.Event{
		Type:      notification.EventVolunteerAdded,
		SubjectID: volunteer.ID.String(),
		Data: map[string]any{
			"name": volunteer.DisplayName(),
			"role": string(role),
		},
	})
	volunteer.ComplianceSteps = steps
	return volunteer, nil
}

func (s *Service) Get(ctx context.Context, rawID string) (domain.Volunteer, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.Volunteer{}, err
	}
	volunteer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Volunteer{}, err
	}
	if volunteer == nil {
		return domain.Volunteer{}, domain.ErrVolunteerNotFound
	}
	return *volunteer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{Email: strings.TrimSpace(req.Email)}
	if status := strings.TrimSpace(req.ApplicationStatus); status != "" {
		switch st := domain.ApplicationStatus(status); st {
		case domain.ApplicationPendingReview, domain.ApplicationApproved, domain.ApplicationRejected:
			filter.ApplicationStatus = st
		default:
			return domain.ListResponse{}, domain.ErrInvalidApplicationStatus
		}
	}
	if raw := strings.TrimSpace(req.Role); raw != "" {
		role, err := roles.Parse(raw)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.Role = role
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, req.Pagination.Limit(), func(v *domain.Volunteer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: v.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	volunteers := make([]domain.Volunteer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		volunteers = append(volunteers, *item)
	}
	return domain.ListResponse{PageInfo: pageInfo, Volunteers: volunteers}, nil
}

func (s *Service) AssignTask(ctx context.Context, req domain.AssignTaskRequest) (task domain.Task, err error) {
	defer func() { s.metrics.RecordCommand("volunteer.assign_task", metrics.Outcome(err)) }()

	id, err := parseID(req.VolunteerID)
	if err != nil {
		return domain.Task{}, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, domain.ErrInvalidTaskTitle
	}
	var dueDate *time.Time
	if raw := strings.TrimSpace(req.DueDate); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return domain.Task{}, domain.ErrInvalidDueDate
		}
		dueDate = &parsed
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		volunteer, err := s.lockActive(ctx, tx, id)
		if err != nil {
			return err
		}
		task = domain.Task{
			ID:           s.genID.Generate(),
			VolunteerID:  volunteer.ID,
			Title:        title,
			Description:  strings.TrimSpace(req.Description),
			Status:       domain.TaskPending,
			AssignedDate: s.clock.Now().UTC(),
			DueDate:      dueDate,
			AssignedBy:   requestctx.ActorID(ctx),
		}
		if err := s.repo.InsertTask(ctx, tx, &task); err != nil {
			return err
		}
		return s.audit(ctx, tx, "task.assigned", volunteer.ID, map[string]any{
			"task_id": task.ID.String(),
			"title":   task.Title,
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) CompleteTask(ctx context.Context, volunteerID, taskID string) (task domain.Task, err error) {
	defer func() { s.metrics.RecordCommand("volunteer.complete_task", metrics.Outcome(err)) }()

	vid, err := parseID(volunteerID)
	if err != nil {
		return domain.Task{}, err
	}
	tid, err := parseID(taskID)
	if err != nil {
		return domain.Task{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindTask(ctx, tx, vid, tid)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrTaskNotFound
		}
		if current.Status == domain.TaskCompleted {
			return domain.ErrTaskAlreadyCompleted
		}
		now := s.clock.Now().UTC()
		current.Status = domain.TaskCompleted
		current.CompletedAt = &now
		if err := s.repo.UpdateTask(ctx, tx, current); err != nil {
			return err
		}
		task = *current
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) LogHours(ctx context.Context, volunteerID string, hours float64) (domain.Volunteer, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return domain.Volunteer{}, domain.ErrInvalidHours
	}
	return s.mutateActive(ctx, "volunteer.log_hours", volunteerID, func(v *domain.Volunteer) map[string]any {
		v.HoursContributed += hours
		return map[string]any{"hours": hours, "total": v.HoursContributed}
	})
}

func (s *Service) SetOnboardingProgress(ctx context.Context, volunteerID string, progress int) (domain.Volunteer, error) {
	if progress < 0 || progress > 100 {
		return domain.Volunteer{}, domain.ErrInvalidProgress
	}
	return s.mutateActive(ctx, "volunteer.set_onboarding_progress", volunteerID, func(v *domain.Volunteer) map[string]any {
		v.OnboardingProgress = progress
		return nil
	})
}

func (s *Service) SetTags(ctx context.Context, volunteerID string, tags []string) (domain.Volunteer, error) {
	normalized := domain.NormalizeTags(tags)
	return s.mutateActive(ctx, "volunteer.set_tags", volunteerID, func(v *domain.Volunteer) map[string]any {
		v.Tags = normalized
		return nil
	})
}

// mutateActive applies mutate to an approved volunteer under its row lock.
// A non-nil audit payload from mutate is written as command.
func (s *Service) mutateActive(ctx context.Context, command, volunteerID string, mutate func(v *domain.Volunteer) map[string]any) (volunteer domain.Volunteer, err error) {
	defer func() { s.metrics.RecordCommand(command, metrics.Outcome(err)) }()

	id, err := parseID(volunteerID)
	if err != nil {
		return domain.Volunteer{}, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.lockActive(ctx, tx, id)
		if err != nil {
			return err
		}
		metadata := mutate(current)
		current.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		if metadata != nil {
			return s.audit(ctx, tx, command, id, metadata)
		}
		return nil
	})
	if err != nil {
		return domain.Volunteer{}, err
	}
	return s.Get(ctx, id.String())
}

func (s *Service) lockActive(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Volunteer, error) {
	volunteer, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if volunteer == nil {
		return nil, domain.ErrVolunteerNotFound
	}
	if volunteer.ApplicationStatus != domain.ApplicationApproved {
		return nil, domain.ErrVolunteerNotActive
	}
	return volunteer, nil
}

func (s *Service) newVolunteer(identity domain.Identity, now time.Time) domain.Volunteer {
	demographics := datatypes.JSONMap{}
	for k, v := range identity.Demographics {
		demographics[k] = v
	}
	return domain.Volunteer{
		ID:             s.genID.Generate(),
		LegalFirstName: identity.LegalFirstName,
		LegalLastName:  identity.LegalLastName,
		PreferredName:  identity.PreferredName,
		Email:          identity.Email,
		Phone:          identity.Phone,
		Demographics:   demographics,
		RoleAssessment: []domain.AssessmentAnswer{},
		Tags:           []string{},
		Achievements:   []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Tasks:          []domain.Task{},
	}
}

func (s *Service) notify(ctx context.Context, event notification.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.Warn("notification not accepted",
			zap.String("type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err),
		)
	}
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, volunteerID snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.AuditLog(ctx, tx, action, "volunteer", volunteerID.String(), metadata)
}

func validateIdentity(identity domain.Identity) (domain.Identity, error) {
	identity.LegalFirstName = strings.TrimSpace(identity.LegalFirstName)
	identity.LegalLastName = strings.TrimSpace(identity.LegalLastName)
	identity.PreferredName = strings.TrimSpace(identity.PreferredName)
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	identity.Phone = strings.TrimSpace(identity.Phone)
	if identity.LegalFirstName == "" || identity.LegalLastName == "" {
		return identity, domain.ErrInvalidName
	}
	if identity.Email == "" || !strings.Contains(identity.Email, "@") {
		return identity, domain.ErrInvalidEmail
	}
	return identity, nil
}

func cleanAssessment(answers []domain.AssessmentAnswer) []domain.AssessmentAnswer {
	out := make([]domain.AssessmentAnswer, 0, len(answers))
	for _, a := range answers {
		q := strings.TrimSpace(a.Question)
		if q == "" {
			continue
		}
		out = append(out, domain.AssessmentAnswer{Question: q, Answer: strings.TrimSpace(a.Answer)})
	}
	return out
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
