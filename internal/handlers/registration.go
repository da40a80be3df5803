package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/middleware"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// Registrar runs the registration pipeline
type Registrar interface {
	Submit(ctx context.Context, form models.RegistrationForm) (*models.RegistrationResult, error)
}

type RegistrationHandler struct {
	registrar Registrar
	logger    *logrus.Logger
}

func NewRegistrationHandler(registrar Registrar, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrar: registrar,
		logger:    logger,
	}
}

// Register handles POST /register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var form models.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		}).Debug("Malformed registration body")
		badRequestBody(c)
		return
	}

	// A started submission runs to completion even if the client goes away,
	// so a stored row always gets its confirmation attempt.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.registrar.Submit(ctx, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
