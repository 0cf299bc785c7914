package server

import (
	"net/http"
	"strings"

	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type scheduleMeetingRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Type        string   `json:"type"`
	MeetingLink string   `json:"meeting_link"`
	Agenda      []string `json:"agenda"`
}

func (s *Server) ScheduleMeeting(c *gin.Context) {
	var req scheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.Schedule(c.Request.Context(), meetingdomain.ScheduleRequest{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		MeetingLink: req.MeetingLink,
		Agenda:      req.Agenda,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type editMeetingRequest struct {
	Title       *string   `json:"title"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Type        *string   `json:"type"`
	MeetingLink *string   `json:"meeting_link"`
	Agenda      *[]string `json:"agenda"`
}

func (s *Server) EditMeeting(c *gin.Context) {
	var req editMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.Edit(c.Request.Context(), meetingdomain.EditRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		MeetingLink: req.MeetingLink,
		Agenda:      req.Agenda,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelMeeting(c *gin.Context) {
	resp, err := s.meetingSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteMeeting(c *gin.Context) {
	resp, err := s.meetingSvc.Complete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMeeting(c *gin.Context) {
	resp, err := s.meetingSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMeetings(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
		Type   string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.List(c.Request.Context(), meetingdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status: strings.TrimSpace(query.Status),
		Type:   strings.TrimSpace(query.Type),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Meetings, "page_info": resp.PageInfo})
}

func (s *Server) ListUpcomingMeetings(c *gin.Context) {
	resp, err := s.meetingSvc.ListUpcoming(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPastMeetings(c *gin.Context) {
	resp, err := s.meetingSvc.ListPast(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rsvpRequest struct {
	Status string `json:"status"`
}

// RecordRSVP records the acting person's response. Retries carrying the same
// Idempotency-Key header return the first result.
func (s *Server) RecordRSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := requestctx.ActorFromContext(c.Request.Context())
	resp, err := s.meetingSvc.RecordRSVP(c.Request.Context(), meetingdomain.RSVPRequest{
		MeetingID:      strings.TrimSpace(c.Param("id")),
		PersonID:       actor.ID,
		PersonName:     actor.Name,
		Status:         req.Status,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RSVPSummary(c *gin.Context) {
	resp, err := s.meetingSvc.RSVPSummary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type emergencyMeetingRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RequestEmergencyMeeting(c *gin.Context) {
	var req emergencyMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.RequestEmergency(c.Request.Context(), meetingdomain.EmergencyRequest{
		Reason: req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListEmergencyMeetings(c *gin.Context) {
	resp, err := s.meetingSvc.ListEmergencyRequests(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
