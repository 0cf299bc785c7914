package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	compliancerepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	fundraisingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	fundraisingrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/repository"
	fundraisingservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	meetingrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/repository"
	meetingservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	volunteerrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/repository"
	volunteerservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/service"
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
	db           *gorm.DB
	sched        *Scheduler
	meetingSvc   meetingdomain.Service
	volunteerSvc volunteerdomain.Service
	ledgerSvc    fundraisingdomain.Service
}

func newFixture(t *testing.T, notifier notification.Notifier) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	appCfg := config.Config{Timezone: "UTC"}
	receipts := idempotency.NewStore()

	meetingSvc := meetingservice.New(meetingservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Config: appCfg,
		Repo: meetingrepository.Provide(), Receipts: receipts,
	})
	volunteerSvc := volunteerservice.New(volunteerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: volunteerrepository.Provide(), ComplianceRepo: compliancerepository.Provide(),
	})
	ledgerSvc := fundraisingservice.New(fundraisingservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: fundraisingrepository.Provide(), Receipts: receipts,
	})

	sched, err := New(Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		AppConfig:    appCfg,
		Config:       Config{BatchSize: 1},
		Receipts:     receipts,
		MeetingSvc:   meetingSvc,
		VolunteerSvc: volunteerSvc,
		LedgerSvc:    ledgerSvc,
		Notifier:     notifier,
	})
	require.NoError(t, err)

	return fixture{db: db, sched: sched, meetingSvc: meetingSvc, volunteerSvc: volunteerSvc, ledgerSvc: ledgerSvc}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMeetingRemindersNotifyOncePerMeeting(t *testing.T) {
	notifier := &notifierMock{}
	f := newFixture(t, notifier)
	ctx := context.Background()

	tomorrow, err := f.meetingSvc.Schedule(ctx, meetingdomain.ScheduleRequest{
		Title: "Board sync", Date: "2026-03-11", Time: "18:00", Type: "board", MeetingLink: "https://meet.example/board",
	})
	require.NoError(t, err)
	_, err = f.meetingSvc.Schedule(ctx, meetingdomain.ScheduleRequest{Title: "Later", Date: "2026-03-12", Type: "team"})
	require.NoError(t, err)
	cancelled, err := f.meetingSvc.Schedule(ctx, meetingdomain.ScheduleRequest{Title: "Dropped", Date: "2026-03-11", Type: "team"})
	require.NoError(t, err)
	_, err = f.meetingSvc.Cancel(ctx, cancelled.ID.String())
	require.NoError(t, err)

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e notification.Event) bool {
		return e.Type == notification.EventMeetingReminder &&
			e.SubjectID == tomorrow.ID.String() &&
			e.Data["meeting_link"] == "https://meet.example/board" &&
			e.Data["date"] == "2026-03-11"
	})).Return(nil).Once()

	require.NoError(t, f.sched.RunOnce(ctx))
	require.NoError(t, f.sched.RunOnce(ctx))

	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestMeetingRemindersCountRejectedNotifications(t *testing.T) {
	notifier := &notifierMock{}
	f := newFixture(t, notifier)
	ctx := context.Background()

	_, err := f.meetingSvc.Schedule(ctx, meetingdomain.ScheduleRequest{Title: "Board sync", Date: "2026-03-11", Type: "board"})
	require.NoError(t, err)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(notification.ErrQueueFull).Once()

	run := &jobRun{job: JobMeetingReminders}
	require.NoError(t, f.sched.MeetingRemindersJob(withJobRun(ctx, run)))
	assert.Equal(t, 0, run.processedCount)
	assert.Equal(t, 1, run.errorCount)
}

func TestLedgerReconciliationFlagsUnbalancedLedgers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	balanced := addBoardMember(t, f, "ada@example.org")
	drifted := addBoardMember(t, f, "grace@example.org")
	_, err := f.volunteerSvc.AddVolunteer(ctx, volunteerdomain.AddVolunteerRequest{
		Identity: volunteerdomain.Identity{LegalFirstName: "Core", LegalLastName: "Helper", Email: "core@example.org"},
		Role:     "Core Volunteer",
	})
	require.NoError(t, err)

	for _, v := range []volunteerdomain.Volunteer{balanced, drifted} {
		_, err := f.ledgerSvc.LogDonation(ctx, fundraisingdomain.LogDonationRequest{
			PersonID: v.ID.String(), Amount: 2500, Type: "personal", Date: "2026-03-01",
		})
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Model(&fundraisingdomain.Progress{}).
		Where("volunteer_id = ?", drifted.ID).
		Update("raised", 9999).Error)

	run := &jobRun{job: JobLedgerReconcile}
	require.NoError(t, f.sched.LedgerReconciliationJob(withJobRun(ctx, run)))
	assert.Equal(t, 2, run.processedCount)
	assert.Equal(t, 1, run.errorCount)
}

func TestRunJobTreatsTimeoutAsSoft(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.cfg.JobTimeout = 5 * time.Millisecond

	err := f.sched.runJob(context.Background(), "timeout_job", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.NoError(t, err)
}

func TestRunJobRunsAsSystemActor(t *testing.T) {
	f := newFixture(t, nil)

	var actorID string
	err := f.sched.runJob(context.Background(), "probe", func(ctx context.Context) error {
		actorID = requestctx.ActorID(ctx)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe: boom")
	assert.Equal(t, schedulerActorID, actorID)
}

func TestIsJobEnabled(t *testing.T) {
	s := &Scheduler{cfg: Config{EnabledJobs: []string{"Meeting_Reminders"}}}
	assert.True(t, s.isJobEnabled(JobMeetingReminders))
	assert.False(t, s.isJobEnabled(JobLedgerReconcile))

	s.cfg.EnabledJobs = nil
	assert.True(t, s.isJobEnabled(JobLedgerReconcile))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 15*time.Minute, cfg.RunInterval)
	assert.Equal(t, 50, cfg.BatchSize)

	provided := ProvideConfig(config.Config{Scheduler: config.SchedulerConfig{Enabled: false, Interval: time.Minute}})
	assert.False(t, provided.Enabled)
	assert.Equal(t, time.Minute, provided.RunInterval)
}

func addBoardMember(t *testing.T, f fixture, email string) volunteerdomain.Volunteer {
	t.Helper()
	v, err := f.volunteerSvc.AddVolunteer(context.Background(), volunteerdomain.AddVolunteerRequest{
		Identity: volunteerdomain.Identity{LegalFirstName: "Board", LegalLastName: "Member", Email: email},
		Role:     "Board Member",
	})
	require.NoError(t, err)
	return v
}
