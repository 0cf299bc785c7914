package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit"
	auditdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/authorization"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance"
	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/document"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising"
	fundraisingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting"
	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/notification"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability"
	obsmiddleware "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/logger"
	obsmetrics "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	obstracing "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/tracing"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/ratelimit"
	volunteermodule "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer"
	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	audit.Module,
	idempotency.Module,
	notification.Module,
	document.Module,
	meeting.Module,
	volunteermodule.Module,
	compliance.Module,
	fundraising.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Params struct {
	fx.In

	Engine        *gin.Engine
	Cfg           config.Config
	Settings      *config.SettingsHolder
	Log           *zap.Logger
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	MeetingSvc    meetingdomain.Service
	VolunteerSvc  volunteerdomain.Service
	ComplianceSvc compliancedomain.Service
	LedgerSvc     fundraisingdomain.Service
	Renderer      document.Renderer
	Limiter       *ratelimit.ApplicationLimiter `optional:"true"`
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	settings      *config.SettingsHolder
	log           *zap.Logger
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	meetingSvc    meetingdomain.Service
	volunteerSvc  volunteerdomain.Service
	complianceSvc compliancedomain.Service
	ledgerSvc     fundraisingdomain.Service
	renderer      document.Renderer
	limiter       *ratelimit.ApplicationLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		engine:        p.Engine,
		cfg:           p.Cfg,
		settings:      p.Settings,
		log:           p.Log.Named("http.server"),
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		meetingSvc:    p.MeetingSvc,
		volunteerSvc:  p.VolunteerSvc,
		complianceSvc: p.ComplianceSvc,
		ledgerSvc:     p.LedgerSvc,
		renderer:      p.Renderer,
		limiter:       p.Limiter,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(ActorContext())

	// Applicants are not signed in yet.
	api.POST("/applications", s.limitApplications(), s.SubmitApplication)

	authed := api.Group("")
	authed.Use(RequireActor())

	authed.GET("/meetings", s.ListMeetings)
	authed.GET("/meetings/upcoming", s.ListUpcomingMeetings)
	authed.GET("/meetings/past", s.ListPastMeetings)
	authed.POST("/meetings", s.authorize(authorization.ObjectMeeting, authorization.ActionMeetingSchedule), s.ScheduleMeeting)
	authed.GET("/meetings/:id", s.GetMeeting)
	authed.PATCH("/meetings/:id", s.authorize(authorization.ObjectMeeting, authorization.ActionMeetingEdit), s.EditMeeting)
	authed.POST("/meetings/:id/cancel", s.authorize(authorization.ObjectMeeting, authorization.ActionMeetingCancel), s.CancelMeeting)
	authed.POST("/meetings/:id/complete", s.authorize(authorization.ObjectMeeting, authorization.ActionMeetingComplete), s.CompleteMeeting)
	authed.PUT("/meetings/:id/rsvp", s.RecordRSVP)
	authed.GET("/meetings/:id/rsvps/summary", s.RSVPSummary)

	authed.GET("/meetings/:id/minutes", s.GetMinutes)
	authed.PUT("/meetings/:id/minutes", s.SaveMinutesDraft)
	authed.GET("/meetings/:id/minutes/export", s.ExportMinutes)
	authed.POST("/meetings/:id/minutes/approve", s.authorize(authorization.ObjectMinutes, authorization.ActionMinutesApprove), s.ApproveMinutes)
	authed.POST("/meetings/:id/minutes/revision", s.authorize(authorization.ObjectMinutes, authorization.ActionMinutesRequestRevision), s.RequestMinutesRevision)
	authed.POST("/meetings/:id/minutes/reopen", s.authorize(authorization.ObjectMinutes, authorization.ActionMinutesReopen), s.ReopenMinutes)

	authed.POST("/emergency-meetings", s.RequestEmergencyMeeting)
	authed.GET("/emergency-meetings", s.authorize(authorization.ObjectMeeting, authorization.ActionMeetingSchedule), s.ListEmergencyMeetings)

	authed.POST("/applications/:id/review", s.authorize(authorization.ObjectApplication, authorization.ActionApplicationReview), s.ReviewApplication)
	authed.POST("/volunteers", s.authorize(authorization.ObjectVolunteer, authorization.ActionVolunteerCreate), s.AddVolunteer)
	authed.GET("/volunteers", s.ListVolunteers)
	authed.GET("/volunteers/:id", s.GetVolunteer)
	authed.POST("/volunteers/:id/tasks", s.authorize(authorization.ObjectTask, authorization.ActionTaskAssign), s.AssignTask)
	authed.POST("/volunteers/:id/tasks/:task_id/complete", s.selfOr(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate), s.CompleteTask)
	authed.POST("/volunteers/:id/hours", s.selfOr(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate), s.LogHours)
	authed.PUT("/volunteers/:id/onboarding-progress", s.authorize(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate), s.SetOnboardingProgress)
	authed.PUT("/volunteers/:id/tags", s.authorize(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate), s.SetTags)

	authed.GET("/volunteers/:id/compliance", s.selfOr(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate), s.GetChecklist)
	authed.PUT("/volunteers/:id/compliance/:step_id", s.SetStepStatus)
	authed.GET("/volunteers/:id/eligibility/:capability", s.Eligibility)

	ledger := authed.Group("/volunteers/:id/fundraising")
	ledger.Use(s.selfOr(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate))
	ledger.GET("", s.GetFundraising)
	ledger.PUT("/goal", s.SetFundraisingGoal)
	ledger.POST("/donations", s.LogDonation)
	ledger.GET("/reconciliation", s.ReconcileFundraising)
	ledger.POST("/prospects", s.AddProspect)

	prospects := authed.Group("/prospects/:id")
	prospects.Use(s.prospectOwnerOr(authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate))
	prospects.PATCH("", s.UpdateProspectStatus)
	prospects.DELETE("", s.RemoveProspect)
	prospects.POST("/outreach", s.LogOutreach)

	authed.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
