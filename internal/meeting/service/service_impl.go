package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rsvpReceiptScope = "meeting.rsvp"

var errReceiptConflict = errors.New("receipt_conflict")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Receipts *idempotency.Store
	Notifier notification.Notifier `optional:"true"`
	AuditSvc auditdomain.Service   `optional:"true"`
	Metrics  *metrics.Metrics      `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	loc      *time.Location
	repo     domain.Repository
	receipts *idempotency.Store
	notifier notification.Notifier
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	notifier := p.Notifier
	if notifier == nil {
		notifier = notification.NoOpNotifier{}
	}
	receipts := p.Receipts
	if receipts == nil {
		receipts = idempotency.NewStore()
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("meeting.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		loc:      p.Config.Location(),
		repo:     p.Repo,
		receipts: receipts,
		notifier: notifier,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Schedule(ctx context.Context, req domain.ScheduleRequest) (meeting domain.Meeting, err error) {
	defer func() { s.metrics.RecordCommand("meeting.schedule", metrics.Outcome(err)) }()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Meeting{}, domain.ErrInvalidTitle
	}
	rawDate := strings.TrimSpace(req.Date)
	if rawDate == "" {
		return domain.Meeting{}, domain.ErrInvalidDate
	}
	date, err := domain.ParseDate(rawDate, s.loc)
	if err != nil {
		return domain.Meeting{}, err
	}
	meetingType := domain.MeetingType(strings.TrimSpace(req.Type))
	if meetingType == "" {
		meetingType = domain.MeetingTypeBoard
	}
	if !meetingType.Valid() {
		return domain.Meeting{}, domain.ErrInvalidMeetingType
	}

	now := s.clock.Now().UTC()
	meeting = domain.Meeting{
		ID:          s.genID.Generate(),
		Title:       title,
		Date:        date,
		Time:        strings.TrimSpace(req.Time),
		Type:        meetingType,
		Status:      domain.StatusScheduled,
		MeetingLink: optionalString(req.MeetingLink),
		Agenda:      cleanAgenda(req.Agenda),
		CreatedBy:   requestctx.ActorID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
		RSVPs:       []domain.RSVP{},
	}
	if err := s.repo.Insert(ctx, s.db, &meeting); err != nil {
		return domain.Meeting{}, err
	}

	s.log.Info("meeting scheduled",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("type", string(meeting.Type)),
		zap.String("date", meeting.Date.Format(time.DateOnly)),
	)
	data := map[string]any{
		"title": meeting.Title,
		"date":  meeting.Date.Format(time.DateOnly),
		"time":  meeting.Time,
		"type":  string(meeting.Type),
	}
	if meeting.MeetingLink != nil {
		data["meeting_link"] = *meeting.MeetingLink
	}
	s.notify(ctx, notification.Event{
		Type:      notification.EventMeetingScheduled,
		SubjectID: meeting.ID.String(),
		Data:      data,
	})
	return meeting, nil
}

func (s *Service) Edit(ctx context.Context, req domain.EditRequest) (meeting domain.Meeting, err error) {
	defer func() { s.metrics.RecordCommand("meeting.edit", metrics.Outcome(err)) }()

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Meeting{}, err
	}

	var title *string
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return domain.Meeting{}, domain.ErrInvalidTitle
		}
		title = &trimmed
	}
	var date *time.Time
	if req.Date != nil {
		parsed, err := domain.ParseDate(strings.TrimSpace(*req.Date), s.loc)
		if err != nil {
			return domain.Meeting{}, err
		}
		date = &parsed
	}
	var meetingType *domain.MeetingType
	if req.Type != nil {
		t := domain.MeetingType(strings.TrimSpace(*req.Type))
		if !t.Valid() {
			return domain.Meeting{}, domain.ErrInvalidMeetingType
		}
		meetingType = &t
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrMeetingNotFound
		}
		if current.Status == domain.StatusCancelled {
			return domain.ErrMeetingCancelled
		}

		if title != nil {
			current.Title = *title
		}
		if date != nil {
			// a completed meeting has happened and cannot move past today
			if current.Status == domain.StatusCompleted && date.After(s.today()) {
				return domain.ErrMeetingInFuture
			}
			current.Date = *date
		}
		if req.Time != nil {
			current.Time = strings.TrimSpace(*req.Time)
		}
		if meetingType != nil {
			current.Type = *meetingType
		}
		if req.MeetingLink != nil {
			current.MeetingLink = optionalString(*req.MeetingLink)
		}
		if req.Agenda != nil {
			current.Agenda = cleanAgenda(*req.Agenda)
		}
		current.UpdatedAt = s.clock.Now().UTC()

		return s.repo.Update(ctx, tx, current)
	})
	if err != nil {
		return domain.Meeting{}, err
	}
	return s.Get(ctx, id.String())
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Meeting, error) {
	return s.transition(ctx, "meeting.cancel", id, domain.StatusCancelled)
}

// Complete finalizes a meeting whose date has passed, or is today.
func (s *Service) Complete(ctx context.Context, id string) (domain.Meeting, error) {
	return s.transition(ctx, "meeting.complete", id, domain.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, command, rawID string, target domain.Status) (meeting domain.Meeting, err error) {
	defer func() { s.metrics.RecordCommand(command, metrics.Outcome(err)) }()

	id, err := parseID(rawID)
	if err != nil {
		return domain.Meeting{}, err
	}

	var from domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrMeetingNotFound
		}
		from = current.Status
		if current.Status == domain.StatusCancelled {
			return domain.ErrMeetingCancelled
		}
		if !isTransitionAllowed(current.Status, target) {
			return domain.ErrMeetingNotScheduled
		}
		if target == domain.StatusCompleted && !domain.CanComplete(*current, s.today()) {
			return domain.ErrMeetingInFuture
		}

		current.Status = target
		current.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		return s.audit(ctx, tx, "meeting."+string(target), current.ID, map[string]any{
			"from": string(from),
			"to":   string(target),
		})
	})
	if err != nil {
		return domain.Meeting{}, err
	}

	s.metrics.RecordTransition("meeting", string(target))
	s.log.Info("meeting status changed",
		zap.String("meeting_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return s.Get(ctx, id.String())
}

func isTransitionAllowed(current, target domain.Status) bool {
	switch current {
	case domain.StatusScheduled:
		return target == domain.StatusCompleted || target == domain.StatusCancelled
	case domain.StatusPendingApproval:
		return target == domain.StatusScheduled || target == domain.StatusCancelled
	default:
		return false
	}
}

func (s *Service) Get(ctx context.Context, rawID string) (domain.Meeting, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.Meeting{}, err
	}
	meeting, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Meeting{}, err
	}
	if meeting == nil {
		return domain.Meeting{}, domain.ErrMeetingNotFound
	}
	if meeting.RSVPs == nil {
		meeting.RSVPs = []domain.RSVP{}
	}
	return *meeting, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{}
	if status := strings.TrimSpace(req.Status); status != "" {
		st := domain.Status(status)
		if !st.Valid() {
			return domain.ListResponse{}, domain.ErrInvalidStatus
		}
		filter.Statuses = []domain.Status{st}
	}
	if t := strings.TrimSpace(req.Type); t != "" {
		mt := domain.MeetingType(t)
		if !mt.Valid() {
			return domain.ListResponse{}, domain.ErrInvalidMeetingType
		}
		filter.Type = mt
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.BuildCursorPageInfo(items, req.Pagination.Limit(), func(m *domain.Meeting) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: m.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	meetings := make([]domain.Meeting, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		meetings = append(meetings, *item)
	}
	return domain.ListResponse{PageInfo: pageInfo, Meetings: meetings}, nil
}

func (s *Service) ListUpcoming(ctx context.Context) ([]domain.Meeting, error) {
	upcoming, _, err := s.partition(ctx)
	return upcoming, err
}

// ListPast returns the past view, most recent first.
func (s *Service) ListPast(ctx context.Context) ([]domain.Meeting, error) {
	_, past, err := s.partition(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(past)
	return past, nil
}

func (s *Service) partition(ctx context.Context) ([]domain.Meeting, []domain.Meeting, error) {
	meetings, err := s.repo.ListByStatus(ctx, s.db, domain.StatusScheduled, domain.StatusCompleted)
	if err != nil {
		return nil, nil, err
	}
	upcoming, past := domain.Partition(meetings, s.today())
	return upcoming, past, nil
}

func (s *Service) RecordRSVP(ctx context.Context, req domain.RSVPRequest) (rsvp domain.RSVP, err error) {
	replayed := false
	defer func() {
		outcome := metrics.Outcome(err)
		if replayed {
			outcome = metrics.OutcomeReplayed
		}
		s.metrics.RecordCommand("meeting.record_rsvp", outcome)
	}()

	meetingID, err := parseID(req.MeetingID)
	if err != nil {
		return domain.RSVP{}, err
	}
	personID := strings.TrimSpace(req.PersonID)
	if personID == "" {
		return domain.RSVP{}, domain.ErrInvalidPerson
	}
	status := domain.RSVPStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return domain.RSVP{}, domain.ErrInvalidRSVPStatus
	}
	personName := strings.TrimSpace(req.PersonName)
	if personName == "" {
		personName = personID
	}
	key, err := idempotency.Normalize(req.IdempotencyKey)
	if err != nil {
		return domain.RSVP{}, err
	}
	scope := idempotency.Scope(rsvpReceiptScope, meetingID.String(), personID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meeting, err := s.repo.FindByIDForUpdate(ctx, tx, meetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}
		if meeting.Status == domain.StatusCancelled {
			return domain.ErrMeetingCancelled
		}

		if existingID, err := s.receipts.Lookup(ctx, tx, scope, key); err != nil {
			return err
		} else if existingID != 0 {
			stored, err := s.repo.FindRSVP(ctx, tx, existingID)
			if err != nil {
				return err
			}
			if stored != nil {
				rsvp = *stored
				replayed = true
				return nil
			}
		}

		candidate := domain.RSVP{
			ID:          s.genID.Generate(),
			MeetingID:   meetingID,
			PersonID:    personID,
			PersonName:  personName,
			Status:      status,
			RespondedAt: s.clock.Now().UTC(),
		}
		if err := s.repo.UpsertRSVP(ctx, tx, &candidate); err != nil {
			return err
		}
		stored, err := s.repo.FindRSVPByPerson(ctx, tx, meetingID, personID)
		if err != nil {
			return err
		}
		if stored == nil {
			return errors.New("rsvp not persisted")
		}
		if _, recorded, err := s.receipts.Record(ctx, tx, scope, key, stored.ID, candidate.RespondedAt); err != nil {
			return err
		} else if !recorded {
			return errReceiptConflict
		}
		rsvp = *stored
		return nil
	})
	if errors.Is(err, errReceiptConflict) {
		// another request with the same key won; report its result
		replayed = true
		return s.replayRSVP(ctx, scope, key)
	}
	if err != nil {
		return domain.RSVP{}, err
	}

	if !replayed {
		s.metrics.RecordRSVP(string(status))
		s.log.Info("rsvp recorded",
			zap.String("meeting_id", meetingID.String()),
			zap.String("person_id", personID),
			zap.String("status", string(status)),
		)
	}
	return rsvp, nil
}

func (s *Service) replayRSVP(ctx context.Context, scope, key string) (domain.RSVP, error) {
	id, err := s.receipts.Lookup(ctx, s.db, scope, key)
	if err != nil {
		return domain.RSVP{}, err
	}
	stored, err := s.repo.FindRSVP(ctx, s.db, id)
	if err != nil {
		return domain.RSVP{}, err
	}
	if stored == nil {
		return domain.RSVP{}, domain.ErrMeetingNotFound
	}
	return *stored, nil
}

func (s *Service) RSVPSummary(ctx context.Context, rawID string) (domain.RSVPSummary, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.RSVPSummary{}, err
	}
	meeting, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.RSVPSummary{}, err
	}
	if meeting == nil {
		return domain.RSVPSummary{}, domain.ErrMeetingNotFound
	}
	return domain.Summarize(meeting.ID, meeting.RSVPs), nil
}

func (s *Service) RequestEmergency(ctx context.Context, req domain.EmergencyRequest) (request domain.EmergencyMeetingRequest, err error) {
	defer func() { s.metrics.RecordCommand("meeting.request_emergency", metrics.Outcome(err)) }()

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.EmergencyMeetingRequest{}, domain.ErrInvalidReason
	}

	request = domain.EmergencyMeetingRequest{
		ID:          s.genID.Generate(),
		Reason:      reason,
		RequestedBy: requestctx.ActorID(ctx),
		Status:      domain.StatusPendingApproval,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if actor, ok := requestctx.ActorFromContext(ctx); ok {
		request.RequestedByName = actor.Name
	}
	if err := s.repo.InsertEmergencyRequest(ctx, s.db, &request); err != nil {
		return domain.EmergencyMeetingRequest{}, err
	}

	s.log.Warn("emergency meeting requested",
		zap.String("request_id", request.ID.String()),
		zap.String("requested_by", request.RequestedBy),
	)
	s.notify(ctx, notification.Event{
		Type:      notification.EventEmergencyRequested,
		SubjectID: request.ID.String(),
		Data: map[string]any{
			"reason":            request.Reason,
			"requested_by":      request.RequestedBy,
			"requested_by_name": request.RequestedByName,
		},
	})
	return request, nil
}

func (s *Service) ListEmergencyRequests(ctx context.Context) ([]domain.EmergencyMeetingRequest, error) {
	return s.repo.ListEmergencyRequests(ctx, s.db, domain.StatusPendingApproval)
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.clock.Now(), s.loc)
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

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, meetingID snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.AuditLog(ctx, tx, action, "meeting", meetingID.String(), metadata)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidMeetingID
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

func cleanAgenda(items []string) []string {
	agenda := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			agenda = append(agenda, trimmed)
		}
	}
	return agenda
}
