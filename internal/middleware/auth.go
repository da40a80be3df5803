package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// AdminAuth requires "Authorization: Bearer <token>". An empty token disables
// the admin API entirely.
func AdminAuth(token string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			abortWithError(c, models.NewServiceUnavailableError("Admin API is disabled"))
			return
		}

		presented, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			logger.WithFields(logrus.Fields{
				"request_id": GetRequestID(c),
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
			}).Warn("Rejected admin request")

			abortWithError(c, models.NewUnauthorizedError("Unauthorized"))
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, err *models.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.Body())
}
