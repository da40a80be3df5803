package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PanicNotifier is told about every recovered panic, e.g. to alert the organisers
type PanicNotifier func(c *gin.Context, err interface{})

// Recovery turns panics into a 500 JSON response. notify may be nil.
func Recovery(logger *logrus.Logger, notify PanicNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithFields(logrus.Fields{
					"request_id": GetRequestID(c),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"client_ip":  c.ClientIP(),
					"panic":      err,
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")

				if notify != nil {
					notify(c, err)
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success":    false,
					"request_id": GetRequestID(c),
					"message":    "An unexpected error occurred. Please try again later.",
				})
			}
		}()

		c.Next()
	}
}
