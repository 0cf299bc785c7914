package server

import (
	"net/http"
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/authorization"
	compliancedomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/domain"
	"github.com/gin-gonic/gin"
)

type setStepStatusRequest struct {
	Status       string  `json:"status"`
	DocumentPath *string `json:"document_path"`
}

func (s *Server) SetStepStatus(c *gin.Context) {
	var req setStepStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Verification, and completing a step that is not a signed form or an
	// uploaded credential, are reviewer actions. Anything else may also be
	// done by the person themselves.
	ctx := c.Request.Context()
	status := strings.ToLower(strings.TrimSpace(req.Status))
	stepID := compliancedomain.StepID(strings.TrimSpace(c.Param("step_id")))
	switch {
	case status == string(compliancedomain.StepStatusVerified),
		status != string(compliancedomain.StepStatusPending) && !compliancedomain.SelfReportable(stepID):
		if err := s.authzSvc.Authorize(ctx, authorization.ObjectCompliance, authorization.ActionComplianceVerify); err != nil {
			AbortWithError(c, err)
			return
		}
	case !s.isSelf(c):
		if err := s.authzSvc.Authorize(ctx, authorization.ObjectVolunteer, authorization.ActionVolunteerUpdate); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	resp, err := s.complianceSvc.SetStepStatus(ctx, compliancedomain.SetStepStatusRequest{
		PersonID:     strings.TrimSpace(c.Param("id")),
		StepID:       string(stepID),
		Status:       req.Status,
		DocumentPath: req.DocumentPath,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetChecklist(c *gin.Context) {
	resp, err := s.complianceSvc.Checklist(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Eligibility(c *gin.Context) {
	resp, err := s.complianceSvc.Eligibility(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("capability")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
