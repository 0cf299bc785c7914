package service

import (
	"context"
	"strings"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) SaveMinutesDraft(ctx context.Context, meetingID, content string) (domain.MinutesRecord, error) {
	if strings.TrimSpace(content) == "" {
		return domain.MinutesRecord{}, domain.ErrInvalidContent
	}
	return s.applyMinutes(ctx, meetingID, domain.MinutesActionSaveDraft, func(record *domain.MinutesRecord, now time.Time) map[string]any {
		record.Content = content
		return nil
	})
}

func (s *Service) ApproveMinutes(ctx context.Context, meetingID string) (domain.MinutesRecord, error) {
	return s.applyMinutes(ctx, meetingID, domain.MinutesActionApprove, func(record *domain.MinutesRecord, now time.Time) map[string]any {
		approvedBy := requestctx.ActorID(ctx)
		record.ApprovedBy = &approvedBy
		record.ApprovedAt = &now
		return map[string]any{"approved_by": approvedBy}
	})
}

// RequestRevision keeps the record in draft and retains note for the author.
func (s *Service) RequestRevision(ctx context.Context, meetingID, note string) (domain.MinutesRecord, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return domain.MinutesRecord{}, domain.ErrInvalidRevisionNote
	}
	return s.applyMinutes(ctx, meetingID, domain.MinutesActionRequestRevision, func(record *domain.MinutesRecord, now time.Time) map[string]any {
		record.RevisionNote = &note
		return map[string]any{"note": note}
	})
}

// ReopenMinutes moves approved minutes back to draft so they can be edited.
func (s *Service) ReopenMinutes(ctx context.Context, meetingID, reason string) (domain.MinutesRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.MinutesRecord{}, domain.ErrInvalidReason
	}
	return s.applyMinutes(ctx, meetingID, domain.MinutesActionReopen, func(record *domain.MinutesRecord, now time.Time) map[string]any {
		record.ApprovedBy = nil
		record.ApprovedAt = nil
		record.RevisionNote = &reason
		return map[string]any{"reason": reason}
	})
}

func (s *Service) GetMinutes(ctx context.Context, rawID string) (domain.MinutesRecord, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.MinutesRecord{}, err
	}
	meeting, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MinutesRecord{}, err
	}
	if meeting == nil {
		return domain.MinutesRecord{}, domain.ErrMeetingNotFound
	}
	if meeting.Minutes == nil {
		return domain.MinutesRecord{}, domain.ErrMinutesMissing
	}
	return *meeting.Minutes, nil
}

// applyMinutes runs one workflow action under the meeting's row lock. mutate
// only runs once the transition is known to be legal, and its return value is
// added to the audit entry.
func (s *Service) applyMinutes(
	ctx context.Context,
	rawID string,
	action domain.MinutesAction,
	mutate func(record *domain.MinutesRecord, now time.Time) map[string]any,
) (record domain.MinutesRecord, err error) {
	defer func() { s.metrics.RecordCommand("minutes."+string(action), metrics.Outcome(err)) }()

	meetingID, err := parseID(rawID)
	if err != nil {
		return domain.MinutesRecord{}, err
	}

	var from domain.MinutesStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meeting, err := s.repo.FindByIDForUpdate(ctx, tx, meetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}

		current, err := s.repo.FindMinutes(ctx, tx, meetingID)
		if err != nil {
			return err
		}
		from = domain.MinutesStatusOf(current)
		next, ok := domain.NextMinutesStatus(from, action)
		if !ok {
			return domain.ErrMinutesTransition
		}

		now := s.clock.Now().UTC()
		if current == nil {
			current = &domain.MinutesRecord{MeetingID: meetingID, CreatedAt: now}
		}
		metadata := mutate(current, now)
		current.Status = next
		current.UpdatedAt = now

		if err := s.repo.SaveMinutes(ctx, tx, current); err != nil {
			return err
		}
		record = *current

		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["from"] = string(from)
		metadata["to"] = string(next)
		return s.audit(ctx, tx, "minutes."+string(action), meetingID, metadata)
	})
	if err != nil {
		return domain.MinutesRecord{}, err
	}

	s.metrics.RecordTransition("minutes", string(record.Status))
	s.log.Info("minutes updated",
		zap.String("meeting_id", meetingID.String()),
		zap.String("action", string(action)),
		zap.String("from", string(from)),
		zap.String("to", string(record.Status)),
	)
	return record, nil
}
