package middleware

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	"retailops/internal/core/security"
)

// RequireCapability rejects callers whose role never holds action.
// Store-scoped roles are checked against their own store here; services
// repeat the check against the store of the row they touch.
func RequireCapability(action security.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if err := security.Require(actor, action, actor.StoreID); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}
