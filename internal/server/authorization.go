package server

import (
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/gin-gonic/gin"
)

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// selfOr lets a person act on their own record at :id and otherwise requires
// object/action.
func (s *Server) selfOr(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.isSelf(c) {
			c.Next()
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) isSelf(c *gin.Context) bool {
	actor, ok := requestctx.ActorFromContext(c.Request.Context())
	if !ok {
		return false
	}
	return actor.ID == strings.TrimSpace(c.Param("id"))
}

// prospectOwnerOr resolves the volunteer owning the prospect at :id and lets
// only that volunteer through without object/action.
func (s *Server) prospectOwnerOr(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		prospect, err := s.ledgerSvc.GetProspect(ctx, strings.TrimSpace(c.Param("id")))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if actor, ok := requestctx.ActorFromContext(ctx); ok && actor.ID == prospect.VolunteerID.String() {
			c.Next()
			return
		}
		if err := s.authzSvc.Authorize(ctx, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
