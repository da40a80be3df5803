package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// RegistrationBrowser is the read side of the registration sheet
type RegistrationBrowser interface {
	ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, models.RegistrationStats, error)
	ExportCSV(ctx context.Context, filter models.RegistrationFilter, w io.Writer) (int, error)
	EmailLogs(ctx context.Context, limit int) ([]*models.EmailLog, error)
}

// SchedulerStatus reports the background job state
type SchedulerStatus interface {
	GetSchedulerStatus() map[string]interface{}
}

type AdminHandler struct {
	browser   RegistrationBrowser
	scheduler SchedulerStatus
	logger    *logrus.Logger
	now       func() time.Time
}

// NewAdminHandler creates the admin handler. scheduler may be nil.
func NewAdminHandler(browser RegistrationBrowser, scheduler SchedulerStatus, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		browser:   browser,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

func filterFromQuery(c *gin.Context) models.RegistrationFilter {
	return models.RegistrationFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Experience: c.Query("experience"),
	}
}

// ListRegistrations handles GET /registrations
func (h *AdminHandler) ListRegistrations(c *gin.Context) {
	regs, stats, err := h.browser.ListRegistrations(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if regs == nil {
		regs = []models.Registration{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    regs,
		"total":   len(regs),
		"stats":   stats,
	})
}

// ExportRegistrations handles GET /registrations/export.csv
func (h *AdminHandler) ExportRegistrations(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.browser.ExportCSV(c.Request.Context(), filterFromQuery(c), &buf)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("rows", n).Info("Registrations exported")

	filename := fmt.Sprintf("ucet-hacks-registrations-%s.csv", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// EmailLogs handles GET /email-logs
func (h *AdminHandler) EmailLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, h.logger, models.NewBadRequestError("limit must be a number"))
			return
		}
		limit = v
	}

	logs, err := h.browser.EmailLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"total":   len(logs),
	})
}

// Scheduler handles GET /scheduler
func (h *AdminHandler) Scheduler(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"running": false}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.scheduler.GetSchedulerStatus(),
	})
}
