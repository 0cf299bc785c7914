package domain

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
)

type ScheduleRequest struct {
	Title       string
	Date        string
	Time        string
	Type        string
	MeetingLink string
	Agenda      []string
}

// EditRequest merges every non-nil field into the meeting.
type EditRequest struct {
	ID          string
	Title       *string
	Date        *string
	Time        *string
	Type        *string
	MeetingLink *string
	Agenda      *[]string
}

type RSVPRequest struct {
	MeetingID      string
	PersonID       string
	PersonName     string
	Status         string
	IdempotencyKey string
}

type EmergencyRequest struct {
	Reason string
}

type ListRequest struct {
	pagination.Pagination
	Status string
	Type   string
}

type ListResponse struct {
	pagination.PageInfo
	Meetings []Meeting `json:"meetings"`
}

type Service interface {
	Schedule(ctx context.Context, req ScheduleRequest) (Meeting, error)
	Edit(ctx context.Context, req EditRequest) (Meeting, error)
	Cancel(ctx context.Context, id string) (Meeting, error)
	Complete(ctx context.Context, id string) (Meeting, error)
	Get(ctx context.Context, id string) (Meeting, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	ListUpcoming(ctx context.Context) ([]Meeting, error)
	ListPast(ctx context.Context) ([]Meeting, error)

	RecordRSVP(ctx context.Context, req RSVPRequest) (RSVP, error)
	RSVPSummary(ctx context.Context, meetingID string) (RSVPSummary, error)

	RequestEmergency(ctx context.Context, req EmergencyRequest) (EmergencyMeetingRequest, error)
	ListEmergencyRequests(ctx context.Context) ([]EmergencyMeetingRequest, error)

	SaveMinutesDraft(ctx context.Context, meetingID, content string) (MinutesRecord, error)
	ApproveMinutes(ctx context.Context, meetingID string) (MinutesRecord, error)
	RequestRevision(ctx context.Context, meetingID, note string) (MinutesRecord, error)
	ReopenMinutes(ctx context.Context, meetingID, reason string) (MinutesRecord, error)
	GetMinutes(ctx context.Context, meetingID string) (MinutesRecord, error)
}

var (
	ErrMeetingNotFound     = apperr.New(apperr.ErrNotFound, "meeting_not_found")
	ErrMinutesMissing      = apperr.New(apperr.ErrNotFound, "minutes_missing")
	ErrInvalidMeetingID    = apperr.New(apperr.ErrValidation, "invalid_meeting_id")
	ErrInvalidTitle        = apperr.New(apperr.ErrValidation, "invalid_title")
	ErrInvalidDate         = apperr.New(apperr.ErrValidation, "invalid_date")
	ErrInvalidMeetingType  = apperr.New(apperr.ErrValidation, "invalid_meeting_type")
	ErrInvalidStatus       = apperr.New(apperr.ErrValidation, "invalid_status")
	ErrInvalidPerson       = apperr.New(apperr.ErrValidation, "invalid_person")
	ErrInvalidRSVPStatus   = apperr.New(apperr.ErrValidation, "invalid_rsvp_status")
	ErrInvalidReason       = apperr.New(apperr.ErrValidation, "invalid_reason")
	ErrInvalidContent      = apperr.New(apperr.ErrValidation, "invalid_content")
	ErrInvalidRevisionNote = apperr.New(apperr.ErrValidation, "invalid_revision_note")
	ErrMeetingCancelled    = apperr.New(apperr.ErrInvalidTransition, "meeting_cancelled")
	ErrMeetingNotScheduled = apperr.New(apperr.ErrInvalidTransition, "meeting_not_scheduled")
	ErrMeetingInFuture     = apperr.New(apperr.ErrInvalidTransition, "meeting_in_future")
	ErrMinutesTransition   = apperr.New(apperr.ErrInvalidTransition, "invalid_minutes_transition")
)
