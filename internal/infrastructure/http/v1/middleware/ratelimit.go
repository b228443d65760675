package middleware

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/security"
	"retailops/pkg/logger"
)

// RateLimit allows at most the limiter's budget of requests per caller.
// The bucket is the user id plus the route, so one noisy endpoint does not
// starve the others. Limiter failures let the request through.
func RateLimit(limiter security.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := appctx.GetUserID(c.Request.Context())
		if userID == "" {
			userID = "ip:" + c.ClientIP()
		}
		key := userID + "|" + c.Request.Method + " " + c.FullPath()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			_ = c.Error(apperror.NewRateLimited(key))
			c.Abort()
			return
		}

		c.Next()
	}
}
