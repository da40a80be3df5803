package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/middleware"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

const (
	msgInvalidBody = "Invalid request body"
	msgInternal    = "Internal server error"
)

// respondError writes err as {success:false, message, errors?}. Only server
// faults are logged as errors; user-correctable ones stay at debug.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	log := logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.FullPath(),
	})

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		log = log.WithField("unhandled", true)
		appErr = models.NewInternalError(msgInternal, err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).WithField("code", appErr.Code).Error("Request failed")
	} else {
		log.WithField("code", appErr.Code).Debug("Request rejected")
	}

	c.JSON(appErr.StatusCode, appErr.Body())
}

func badRequestBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": msgInvalidBody,
	})
}

// MethodNotAllowed answers known paths requested with an unsupported verb
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
}
