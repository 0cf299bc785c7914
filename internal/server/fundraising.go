package server

import (
	"net/http"
	"strings"

	fundraisingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetFundraising(c *gin.Context) {
	resp, err := s.ledgerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setGoalRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) SetFundraisingGoal(c *gin.Context) {
	var req setGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.SetGoal(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type logDonationRequest struct {
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
	Note   string `json:"note"`
	Date   string `json:"date"`
}

func (s *Server) LogDonation(c *gin.Context) {
	var req logDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.LogDonation(c.Request.Context(), fundraisingdomain.LogDonationRequest{
		PersonID:       strings.TrimSpace(c.Param("id")),
		Amount:         req.Amount,
		Type:           req.Type,
		Note:           req.Note,
		Date:           req.Date,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ReconcileFundraising(c *gin.Context) {
	resp, err := s.ledgerSvc.Reconcile(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addProspectRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
}

func (s *Server) AddProspect(c *gin.Context) {
	var req addProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.AddProspect(c.Request.Context(), fundraisingdomain.AddProspectRequest{
		PersonID:     strings.TrimSpace(c.Param("id")),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Type:         req.Type,
		Amount:       req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type updateProspectRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateProspectStatus(c *gin.Context) {
	var req updateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.UpdateProspectStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveProspect(c *gin.Context) {
	if err := s.ledgerSvc.RemoveProspect(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type outreachRequest struct {
	Date   string `json:"date"`
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

func (s *Server) LogOutreach(c *gin.Context) {
	var req outreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.LogOutreach(c.Request.Context(), strings.TrimSpace(c.Param("id")), fundraisingdomain.OutreachRequest{
		Date:   req.Date,
		Method: req.Method,
		Notes:  req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
