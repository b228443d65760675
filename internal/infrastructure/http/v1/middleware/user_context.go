package middleware

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/core/security"
)

const actorKey = "actor"

// Actor resolves the authenticated user into a security.Actor for handlers.
// Must run after Auth.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := security.ActorFromContext(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor returns the actor set by Actor.
func GetActor(c *gin.Context) (security.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return security.Actor{}, false
	}
	actor, ok := v.(security.Actor)
	return actor, ok
}
