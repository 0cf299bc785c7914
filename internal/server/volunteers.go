package server

import (
	"net/http"
	"strings"

	volunteerdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type identityRequest struct {
	LegalFirstName string         `json:"legal_first_name"`
	LegalLastName  string         `json:"legal_last_name"`
	PreferredName  string         `json:"preferred_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Demographics   map[string]any `json:"demographics"`
}

func (r identityRequest) identity() volunteerdomain.Identity {
	return volunteerdomain.Identity{
		LegalFirstName: r.LegalFirstName,
		LegalLastName:  r.LegalLastName,
		PreferredName:  r.PreferredName,
		Email:          r.Email,
		Phone:          r.Phone,
		Demographics:   r.Demographics,
	}
}

type submitApplicationRequest struct {
	identityRequest
	AppliedRole    string                             `json:"applied_role"`
	RoleAssessment []volunteerdomain.AssessmentAnswer `json:"role_assessment"`
	ResumePath     string                             `json:"resume_path"`
}

func (s *Server) SubmitApplication(c *gin.Context) {
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.SubmitApplication(c.Request.Context(), volunteerdomain.SubmitApplicationRequest{
		Identity:       req.identity(),
		AppliedRole:    req.AppliedRole,
		RoleAssessment: req.RoleAssessment,
		ResumePath:     req.ResumePath,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type reviewApplicationRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func (s *Server) ReviewApplication(c *gin.Context) {
	var req reviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.ReviewApplication(c.Request.Context(), volunteerdomain.ReviewRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Action: req.Action,
		Notes:  req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addVolunteerRequest struct {
	identityRequest
	Role string   `json:"role"`
	Tags []string `json:"tags"`
}

func (s *Server) AddVolunteer(c *gin.Context) {
	var req addVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.AddVolunteer(c.Request.Context(), volunteerdomain.AddVolunteerRequest{
		Identity: req.identity(),
		Role:     req.Role,
		Tags:     req.Tags,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetVolunteer(c *gin.Context) {
	resp, err := s.volunteerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVolunteers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ApplicationStatus string `form:"application_status"`
		Role              string `form:"role"`
		Email             string `form:"email"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.List(c.Request.Context(), volunteerdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		ApplicationStatus: strings.TrimSpace(query.ApplicationStatus),
		Role:              strings.TrimSpace(query.Role),
		Email:             strings.TrimSpace(query.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Volunteers, "page_info": resp.PageInfo})
}

type assignTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

func (s *Server) AssignTask(c *gin.Context) {
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.AssignTask(c.Request.Context(), volunteerdomain.AssignTaskRequest{
		VolunteerID: strings.TrimSpace(c.Param("id")),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CompleteTask(c *gin.Context) {
	resp, err := s.volunteerSvc.CompleteTask(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("task_id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type logHoursRequest struct {
	Hours float64 `json:"hours"`
}

func (s *Server) LogHours(c *gin.Context) {
	var req logHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.LogHours(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Hours)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type onboardingProgressRequest struct {
	Progress int `json:"progress"`
}

func (s *Server) SetOnboardingProgress(c *gin.Context) {
	var req onboardingProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.SetOnboardingProgress(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Progress)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setTagsRequest struct {
	Tags []string `json:"tags"`
}

func (s *Server) SetTags(c *gin.Context) {
	var req setTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.SetTags(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Tags)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
