package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// EmailSettings reads, stores and verifies the SMTP account
type EmailSettings interface {
	Get(ctx context.Context) (models.EmailConfig, string)
	Update(ctx context.Context, cfg models.EmailConfig) (models.EmailConfig, error)
	Test(ctx context.Context, cfg *models.EmailConfig) error
}

// EmailSender sends arbitrary admin email
type EmailSender interface {
	SendEmail(ctx context.Context, req models.SendEmailRequest) (string, error)
}

type EmailHandler struct {
	settings EmailSettings
	sender   EmailSender
	logger   *logrus.Logger
}

func NewEmailHandler(settings EmailSettings, sender EmailSender, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{
		settings: settings,
		sender:   sender,
		logger:   logger,
	}
}

// GetConfig handles GET /email/config. The password is always redacted.
func (h *EmailHandler) GetConfig(c *gin.Context) {
	cfg, source := h.settings.Get(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cfg,
		"source":  source,
	})
}

func (h *EmailHandler) UpdateConfig(c *gin.Context) {
	var cfg models.EmailConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequestBody(c)
		return
	}

	saved, err := h.settings.Update(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email configuration updated",
		"data":    saved,
	})
}

// TestConfig verifies the supplied account, or the current one when the body is empty
func (h *EmailHandler) TestConfig(c *gin.Context) {
	var cfg *models.EmailConfig
	var body models.EmailConfig
	switch err := c.ShouldBindJSON(&body); {
	case err == nil:
		cfg = &body
	case errors.Is(err, io.EOF):
	default:
		badRequestBody(c)
		return
	}

	if err := h.settings.Test(c.Request.Context(), cfg); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SMTP connection verified",
	})
}

func (h *EmailHandler) Send(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	messageID, err := h.sender.SendEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Email sent to " + req.To,
		"messageId": messageID,
	})
}
