package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
)

// TemplateManager manages templates and the quote pool
type TemplateManager interface {
	ListTemplates(ctx context.Context) ([]*models.EmailTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error)
	CreateTemplate(ctx context.Context, req models.TemplateRequest) (*models.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req models.TemplateRequest) (*models.EmailTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	Preview(ctx context.Context, id string, overrides map[string]string) (*services.TemplatePreview, error)
	SendTest(ctx context.Context, id string, req models.TestTemplateRequest) (string, error)

	ListQuotes(ctx context.Context) ([]models.MotivationalQuote, error)
	CreateQuote(ctx context.Context, req models.QuoteRequest) (*models.MotivationalQuote, error)
	UpdateQuote(ctx context.Context, id string, req models.QuoteRequest) (*models.MotivationalQuote, error)
	DeleteQuote(ctx context.Context, id string) error
}

type TemplateHandler struct {
	manager TemplateManager
	logger  *logrus.Logger
}

func NewTemplateHandler(manager TemplateManager, logger *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.manager.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if templates == nil {
		templates = []*models.EmailTemplate{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": templates})
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	t, err := h.manager.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	t, err := h.manager.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": t})
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	t, err := h.manager.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.manager.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted"})
}

// PreviewTemplate renders with sample data; the body may override sample values
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	var req struct {
		SampleData map[string]string `json:"sampleData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequestBody(c)
		return
	}

	preview, err := h.manager.Preview(c.Request.Context(), c.Param("id"), req.SampleData)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": preview})
}

func (h *TemplateHandler) TestTemplate(c *gin.Context) {
	var req models.TestTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	messageID, err := h.manager.SendTest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Test email sent to " + req.Email,
		"messageId": messageID,
	})
}

func (h *TemplateHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.manager.ListQuotes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if quotes == nil {
		quotes = []models.MotivationalQuote{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": quotes})
}

func (h *TemplateHandler) CreateQuote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	q, err := h.manager.CreateQuote(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": q})
}

func (h *TemplateHandler) UpdateQuote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	q, err := h.manager.UpdateQuote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": q})
}

func (h *TemplateHandler) DeleteQuote(c *gin.Context) {
	if err := h.manager.DeleteQuote(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quote deleted"})
}
