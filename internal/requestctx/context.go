// Package requestctx carries request-scoped identifiers (request id, acting
// person) through context.Context.
package requestctx

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type actorKey struct{}

// Actor is the person issuing a command as asserted by the upstream gateway.
type Actor struct {
	ID   string
	Name string
	Role string
}

func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.ID) == ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	actor.ID = strings.TrimSpace(actor.ID)
	actor.Name = strings.TrimSpace(actor.Name)
	actor.Role = strings.TrimSpace(actor.Role)
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting person; ok is false when the request is anonymous.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.IsZero() {
		return Actor{}, false
	}
	return actor, true
}

// ActorID returns the acting person id or "system" when none is set.
func ActorID(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.ID
	}
	return "system"
}
