package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/document"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type minutesDraftRequest struct {
	Content string `json:"content"`
}

type minutesNoteRequest struct {
	Note string `json:"note"`
}

type minutesReopenRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) GetMinutes(c *gin.Context) {
	resp, err := s.meetingSvc.GetMinutes(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveMinutesDraft(c *gin.Context) {
	var req minutesDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.SaveMinutesDraft(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Content)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveMinutes(c *gin.Context) {
	resp, err := s.meetingSvc.ApproveMinutes(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RequestMinutesRevision(c *gin.Context) {
	var req minutesNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.RequestRevision(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReopenMinutes(c *gin.Context) {
	var req minutesReopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.ReopenMinutes(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ExportMinutes streams the meeting minutes as a PDF attachment.
func (s *Server) ExportMinutes(c *gin.Context) {
	ctx := c.Request.Context()
	meeting, err := s.meetingSvc.Get(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	settings := s.settings.Get()
	doc, err := document.MinutesFromMeeting(settings.Organization.Name, meeting)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc.Footer = settings.Minutes.Footer

	out, err := s.renderer.RenderMinutes(ctx, doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(out)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := minutesFilename(meeting.Title, meeting.Date.Format("2006-01-02"))
	s.log.Info("minutes exported",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int("bytes", len(body)),
	)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func minutesFilename(title, date string) string {
	name := slug.Make(title)
	if name == "" {
		name = "meeting"
	}
	return date + "-" + name + "-minutes.pdf"
}
