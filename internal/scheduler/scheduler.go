package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	fundraisingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/ratelimit"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobMeetingReminders  = "meeting_reminders"
	JobLedgerReconcile   = "ledger_reconciliation"
	lockKeyPrefix        = "portal:scheduler:"
	reminderReceiptScope = "scheduler.meeting_reminder"
	schedulerActorID     = "system"
	schedulerActorName   = "scheduler"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	AppConfig    config.Config
	Config       Config `optional:"true"`
	Receipts     *idempotency.Store
	MeetingSvc   meetingdomain.Service
	VolunteerSvc volunteerdomain.Service
	LedgerSvc    fundraisingdomain.Service
	Notifier     notification.Notifier `optional:"true"`
	Locker       *ratelimit.Locker     `optional:"true"`
	Metrics      *metrics.Metrics      `optional:"true"`
}

type Scheduler struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          Config
	loc          *time.Location
	genID        *snowflake.Node
	clock        clock.Clock
	receipts     *idempotency.Store
	meetingSvc   meetingdomain.Service
	volunteerSvc volunteerdomain.Service
	ledgerSvc    fundraisingdomain.Service
	notifier     notification.Notifier
	locker       *ratelimit.Locker
	metrics      *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Receipts == nil ||
		p.MeetingSvc == nil || p.VolunteerSvc == nil || p.LedgerSvc == nil {
		return nil, ErrInvalidConfig
	}
	notifier := p.Notifier
	if notifier == nil {
		notifier = notification.NoOpNotifier{}
	}
	return &Scheduler{
		db:           p.DB,
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		loc:          p.AppConfig.Location(),
		genID:        p.GenID,
		clock:        p.Clock,
		receipts:     p.Receipts,
		meetingSvc:   p.MeetingSvc,
		volunteerSvc: p.VolunteerSvc,
		ledgerSvc:    p.LedgerSvc,
		notifier:     notifier,
		locker:       p.Locker,
		metrics:      p.Metrics,
	}, nil
}

// runJob executes fn under a soft timeout. When a locker is configured only
// one instance runs a job at a time; the others skip it.
func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) (err error) {
	defer func() { s.metrics.RecordCommand("scheduler."+name, metrics.Outcome(err)) }()

	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		unlock, ok, lockErr := s.locker.Acquire(ctx, lockKeyPrefix+name, s.cfg.JobTimeout)
		if lockErr != nil {
			s.log.Warn("scheduler lock failed", zap.String("job", name), zap.Error(lockErr))
			return nil
		}
		if !ok {
			s.log.Debug("scheduler job held elsewhere", zap.String("job", name))
			return nil
		}
		defer func() {
			if unlockErr := unlock(context.Background()); unlockErr != nil {
				s.log.Warn("scheduler lock release failed", zap.String("job", name), zap.Error(unlockErr))
			}
		}()
	}

	run := &jobRun{job: name, runID: s.genID.Generate().String(), startedAt: s.clock.Now()}
	ctx = withJobRun(ctx, run)
	ctx = requestctx.WithActor(ctx, requestctx.Actor{ID: schedulerActorID, Name: schedulerActorName})
	ctx = requestctx.WithRequestID(ctx, run.runID)

	err = fn(ctx)
	s.logJobFinish(run, err)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out", zap.String("job", name), zap.Duration("timeout", s.cfg.JobTimeout))
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobMeetingReminders, s.MeetingRemindersJob},
		{JobLedgerReconcile, s.LedgerReconciliationJob},
	}

	var err error
	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
