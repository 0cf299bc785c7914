package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auditrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/repository"
	auditservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/audit/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/authorization"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/clock"
	compliancerepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/repository"
	complianceservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/document"
	fundraisingrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/repository"
	fundraisingservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	meetingrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/repository"
	meetingservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/service"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability"
	obsmetrics "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/observability/metrics"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	volunteerrepository "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/repository"
	volunteerservice "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type actorHeaders struct {
	id   string
	name string
	role string
}

var (
	boardChair  = actorHeaders{id: "p-chair", name: "Board Chair", role: "Board Member"}
	coordinator = actorHeaders{id: "p-coord", name: "Casey", role: "Volunteer Coordinator"}
	admin       = actorHeaders{id: "p-admin", name: "Alex", role: "Admin"}
	volunteer   = actorHeaders{id: "p-vol", name: "Val", role: "Core Volunteer"}
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	httpMetrics, err := obsmetrics.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	engine := NewEngine(observability.Config{}, httpMetrics)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	settings, err := config.LoadSettings(log, t.TempDir())
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: auditrepository.Provide(),
	})
	complianceRepo := compliancerepository.Provide()
	receipts := idempotency.NewStore()

	srv := NewServer(Params{
		Engine:   engine,
		Cfg:      config.Config{Timezone: "UTC"},
		Settings: settings,
		Log:      log,
		AuthzSvc: authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer, AuditSvc: auditSvc}),
		AuditSvc: auditSvc,
		MeetingSvc: meetingservice.New(meetingservice.Params{
			DB: db, Log: log, GenID: node, Clock: fake, Config: config.Config{Timezone: "UTC"},
			Repo: meetingrepository.Provide(), Receipts: receipts, AuditSvc: auditSvc,
		}),
		VolunteerSvc: volunteerservice.New(volunteerservice.Params{
			DB: db, Log: log, GenID: node, Clock: fake,
			Repo: volunteerrepository.Provide(), ComplianceRepo: complianceRepo, AuditSvc: auditSvc,
		}),
		ComplianceSvc: complianceservice.New(complianceservice.Params{
			DB: db, Log: log, Clock: fake, Repo: complianceRepo, AuditSvc: auditSvc,
		}),
		LedgerSvc: fundraisingservice.New(fundraisingservice.Params{
			DB: db, Log: log, GenID: node, Clock: fake,
			Repo: fundraisingrepository.Provide(), Receipts: receipts, AuditSvc: auditSvc,
		}),
		Renderer: document.New(log),
	})
	srv.RegisterRoutes()
	return engine
}

func do(t *testing.T, engine *gin.Engine, method, path string, actor *actorHeaders, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(HeaderActorID, actor.id)
		req.Header.Set(HeaderActorName, actor.name)
		req.Header.Set(HeaderActorRole, actor.role)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t)
	rec := do(t, engine, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnonymousRequestsOnlyReachApplications(t *testing.T) {
	engine := newTestServer(t)

	rec := do(t, engine, http.MethodGet, "/api/v1/meetings/upcoming", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/v1/applications", nil, map[string]any{
		"legal_first_name": "Jordan",
		"legal_last_name":  "Lee",
		"email":            "Jordan@Example.org",
		"applied_role":     "Core Volunteer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "pendingReview", data["application_status"])
	assert.Equal(t, "jordan@example.org", data["email"])
}

func TestMeetingCommandsRequireRole(t *testing.T) {
	engine := newTestServer(t)
	body := map[string]any{"title": "Board meeting", "date": "2026-03-20"}

	rec := do(t, engine, http.MethodPost, "/api/v1/meetings", &volunteer, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/v1/meetings", &boardChair, map[string]any{"title": "Board meeting", "date": "20/03/2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date", decodeError(t, rec).Code)

	rec = do(t, engine, http.MethodPost, "/api/v1/meetings", &boardChair, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "scheduled", decodeData(t, rec)["status"])

	rec = do(t, engine, http.MethodGet, "/api/v1/meetings/123456", &volunteer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "meeting_not_found", decodeError(t, rec).Code)
}

func TestMinutesWorkflowOverHTTP(t *testing.T) {
	engine := newTestServer(t)

	rec := do(t, engine, http.MethodPost, "/api/v1/meetings", &boardChair, map[string]any{
		"title":  "Spring Board Meeting",
		"date":   "2026-03-20",
		"agenda": []string{"Budget"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData(t, rec)["id"].(string)
	base := "/api/v1/meetings/" + id + "/minutes"

	rec = do(t, engine, http.MethodGet, base+"/export", &boardChair, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodPut, base, &volunteer, map[string]any{"content": "Quorum reached. Budget adopted."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "draft", decodeData(t, rec)["status"])

	rec = do(t, engine, http.MethodPost, base+"/approve", &volunteer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPost, base+"/approve", &boardChair, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decodeData(t, rec)["status"])

	rec = do(t, engine, http.MethodPost, base+"/approve", &boardChair, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_minutes_transition", decodeError(t, rec).Code)

	rec = do(t, engine, http.MethodGet, base+"/export", &volunteer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "2026-03-20-spring-board-meeting-minutes.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestVolunteerLifecycleOverHTTP(t *testing.T) {
	engine := newTestServer(t)

	rec := do(t, engine, http.MethodPost, "/api/v1/applications", nil, map[string]any{
		"legal_first_name": "Sam",
		"legal_last_name":  "Rivera",
		"email":            "sam@example.org",
		"applied_role":     "Board Member",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData(t, rec)["id"].(string)

	rec = do(t, engine, http.MethodPost, "/api/v1/applications/"+id+"/review", &boardChair, map[string]any{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/v1/applications/"+id+"/review", &coordinator, map[string]any{"action": "approve", "notes": "Welcome"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decodeData(t, rec)["application_status"])

	rec = do(t, engine, http.MethodPost, "/api/v1/applications/"+id+"/review", &coordinator, map[string]any{"action": "reject"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	self := actorHeaders{id: id, name: "Sam", role: "Board Member"}
	rec = do(t, engine, http.MethodPut, "/api/v1/volunteers/"+id+"/fundraising/goal", &self, map[string]any{"amount": -5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_amount", decodeError(t, rec).Type)

	rec = do(t, engine, http.MethodPut, "/api/v1/volunteers/"+id+"/fundraising/goal", &volunteer, map[string]any{"amount": 5000})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPut, "/api/v1/volunteers/"+id+"/compliance/medicalLicense", &self, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_step", decodeError(t, rec).Type)

	rec = do(t, engine, http.MethodPut, "/api/v1/volunteers/"+id+"/compliance/backgroundCheck", &self, map[string]any{"status": "verified"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPut, "/api/v1/volunteers/"+id+"/compliance/backgroundCheck", &coordinator, map[string]any{"status": "verified"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "verified", decodeData(t, rec)["status"])
}

func TestVolunteerCannotSelfCompleteReviewedSteps(t *testing.T) {
	engine := newTestServer(t)

	rec := do(t, engine, http.MethodPost, "/api/v1/applications", nil, map[string]any{
		"legal_first_name": "Robin",
		"legal_last_name":  "Ng",
		"email":            "robin@example.org",
		"applied_role":     "Board Member",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData(t, rec)["id"].(string)
	rec = do(t, engine, http.MethodPost, "/api/v1/applications/"+id+"/review", &coordinator, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	self := actorHeaders{id: id, name: "Robin", role: "Board Member"}
	base := "/api/v1/volunteers/" + id + "/compliance/"
	for _, step := range []string{"backgroundCheck", "hipaaTraining", "training"} {
		rec = do(t, engine, http.MethodPut, base+step, &self, map[string]any{"status": "completed"})
		assert.Equal(t, http.StatusForbidden, rec.Code, step)
	}

	rec = do(t, engine, http.MethodGet, "/api/v1/volunteers/"+id+"/eligibility/volunteer_at_event", &self, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeData(t, rec)["eligible"])

	// signed forms remain self-service
	rec = do(t, engine, http.MethodPut, base+"codeOfConduct", &self, map[string]any{"status": "completed", "document_path": "forms/" + id + "/code-of-conduct.pdf"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decodeData(t, rec)["status"])

	rec = do(t, engine, http.MethodPut, base+"backgroundCheck", &coordinator, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decodeData(t, rec)["status"])
}

func approvedBoardMember(t *testing.T, engine *gin.Engine, first, email string) actorHeaders {
	t.Helper()
	rec := do(t, engine, http.MethodPost, "/api/v1/applications", nil, map[string]any{
		"legal_first_name": first,
		"legal_last_name":  "Okafor",
		"email":            email,
		"applied_role":     "Board Member",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeData(t, rec)["id"].(string)
	rec = do(t, engine, http.MethodPost, "/api/v1/applications/"+id+"/review", &coordinator, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return actorHeaders{id: id, name: first, role: "Board Member"}
}

func TestProspectsAreOwnerOnly(t *testing.T) {
	engine := newTestServer(t)
	owner := approvedBoardMember(t, engine, "Ada", "ada@example.org")
	other := approvedBoardMember(t, engine, "Ben", "ben@example.org")

	rec := do(t, engine, http.MethodPost, "/api/v1/volunteers/"+owner.id+"/fundraising/prospects", &owner, map[string]any{
		"name": "Acme Foundation", "type": "foundation", "amount": 2500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := "/api/v1/prospects/" + decodeData(t, rec)["id"].(string)

	rec = do(t, engine, http.MethodPatch, path, &other, map[string]any{"status": "declined"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, engine, http.MethodPost, path+"/outreach", &other, map[string]any{"method": "email"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, engine, http.MethodDelete, path, &other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodPatch, path, &owner, map[string]any{"status": "contacted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "contacted", decodeData(t, rec)["status"])

	rec = do(t, engine, http.MethodPost, path+"/outreach", &coordinator, map[string]any{"method": "phone"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, engine, http.MethodDelete, path, &owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, engine, http.MethodDelete, path, &owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditLogsAreAdminOnly(t *testing.T) {
	engine := newTestServer(t)

	rec := do(t, engine, http.MethodGet, "/api/v1/audit-logs", &coordinator, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/v1/audit-logs?action=authorization.denied", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestMinutesFilename(t *testing.T) {
	assert.Equal(t, "2026-03-20-board-q1-minutes.pdf", minutesFilename("Board: Q1!", "2026-03-20"))
	assert.Equal(t, "2026-03-20-meeting-minutes.pdf", minutesFilename("  ", "2026-03-20"))
}
