package scheduler

import (
	"context"
	"errors"
	"time"

	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/roles"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"go.uber.org/zap"
)

// MeetingRemindersJob notifies once per scheduled meeting held tomorrow in the
// organization's timezone.
func (s *Scheduler) MeetingRemindersJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	now := s.clock.Now()
	tomorrow := meetingdomain.DateOf(now, s.loc).AddDate(0, 0, 1)

	meetings, err := s.meetingSvc.ListUpcoming(ctx)
	if err != nil {
		return err
	}

	var errs error
	for _, meeting := range meetings {
		if meeting.Status != meetingdomain.StatusScheduled || !meeting.Date.Equal(tomorrow) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		_, recorded, err := s.receipts.Record(ctx, s.db, reminderReceiptScope, meeting.ID.String(), meeting.ID, now)
		if err != nil {
			run.IncError()
			errs = errors.Join(errs, err)
			continue
		}
		if !recorded {
			continue
		}

		data := map[string]any{
			"title": meeting.Title,
			"date":  meeting.Date.Format(time.DateOnly),
			"time":  meeting.Time,
			"type":  string(meeting.Type),
		}
		if meeting.MeetingLink != nil {
			data["meeting_link"] = *meeting.MeetingLink
		}
		event := notification.Event{
			Type:       notification.EventMeetingReminder,
			SubjectID:  meeting.ID.String(),
			Data:       data,
			RequestID:  requestctx.RequestIDFromContext(ctx),
			OccurredAt: now,
		}
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.log.Warn("reminder not accepted", zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
			run.IncError()
			continue
		}
		run.AddProcessed(1)
	}
	return errs
}

// LedgerReconciliationJob checks every approved governance member's stored
// fundraising totals against their donation log.
func (s *Scheduler) LedgerReconciliationJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)

	var errs error
	for _, role := range roles.All() {
		if !role.IsGovernance() {
			continue
		}

		pageToken := ""
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			resp, err := s.volunteerSvc.List(ctx, volunteerdomain.ListRequest{
				Pagination:        pagination.Pagination{PageToken: pageToken, PageSize: s.cfg.BatchSize},
				ApplicationStatus: string(volunteerdomain.ApplicationApproved),
				Role:              role.Slug(),
			})
			if err != nil {
				return errors.Join(errs, err)
			}

			for _, volunteer := range resp.Volunteers {
				result, err := s.ledgerSvc.Reconcile(ctx, volunteer.ID.String())
				if err != nil {
					run.IncError()
					errs = errors.Join(errs, err)
					continue
				}
				run.AddProcessed(1)
				// Reconcile logs the drift itself.
				if !result.Balanced {
					run.IncError()
				}
			}

			if !resp.HasMore || resp.NextPageToken == "" {
				break
			}
			pageToken = resp.NextPageToken
		}
	}
	return errs
}
