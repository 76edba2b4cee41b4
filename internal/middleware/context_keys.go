package middleware

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// actorKey is the key used to store the authenticated caller in the Gin and request contexts.
const actorKey = contextKey("actor")

// WithActor returns a copy of ctx carrying the caller identity.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext retrieves the authenticated caller from the Gin context.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	if val, exists := c.Get(string(actorKey)); exists {
		if actor, ok := val.(domain.Actor); ok {
			return actor, true
		}
	}
	// check in the request context as well
	actor, ok := c.Request.Context().Value(actorKey).(domain.Actor)
	return actor, ok
}
