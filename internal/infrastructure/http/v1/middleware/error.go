package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			// 5xx never carries details of the cause
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				c.JSON(appErr.HTTPStatus, internalBody(c))
				return
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, internalBody(c))
	}
}

func internalBody(c *gin.Context) gin.H {
	return gin.H{
		"code":    apperror.CodeInternal,
		"message": "Internal server error",
		"details": map[string]any{
			"request_id": appctx.GetRequestID(c.Request.Context()),
		},
	}
}
