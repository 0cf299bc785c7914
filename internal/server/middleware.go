package server

import (
	"math"
	"strconv"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Identity is asserted by the upstream gateway that terminates sign-in.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
	HeaderActorRole = "X-Actor-Role"

	HeaderIdempotencyKey = "Idempotency-Key"
)

// ActorContext copies the gateway identity headers into the request context.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := requestctx.Actor{
			ID:   c.GetHeader(HeaderActorID),
			Name: c.GetHeader(HeaderActorName),
			Role: c.GetHeader(HeaderActorRole),
		}
		if !actor.IsZero() {
			c.Request = c.Request.WithContext(requestctx.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requestctx.ActorFromContext(c.Request.Context()); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// limitApplications throttles anonymous submissions per client address and
// lets requests through when the limiter itself errors.
func (s *Server) limitApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}
		res, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("application rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
