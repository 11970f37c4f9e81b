package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/job-executor/pkg/api/dto"
)

// Recovery panic恢复中间件
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithFields(logrus.Fields{
					"panic": err,
					"path":  c.Request.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("[Recovery] panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"Internal Server Error",
				))
			}
		}()
		c.Next()
	}
}
