package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/middleware"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// RouterConfig carries everything NewRouter mounts. Nil handlers leave their
// routes out.
type RouterConfig struct {
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Templates    *TemplateHandler
	Email        *EmailHandler
	Health       *HealthHandler

	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	AdminToken     string
	HSTS           bool
	OnPanic        middleware.PanicNotifier
	Metrics        *metrics.Metrics
	Logger         *logrus.Logger
}

// NewRouter builds the HTTP surface: the public registration endpoint,
// health and metrics, and the token-protected admin API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(cfg.Logger, cfg.OnPanic))
	router.Use(middleware.StructuredLogger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.Security(cfg.HSTS))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.Registration != nil {
		public := []gin.HandlerFunc{cfg.Registration.Register}
		if cfg.RateLimiter != nil {
			public = append([]gin.HandlerFunc{cfg.RateLimiter.Middleware()}, public...)
		}
		router.POST("/register", public...)
		router.POST("/api/register", public...)
	}

	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := router.Group("/api/v1/admin", middleware.AdminAuth(cfg.AdminToken, cfg.Logger), middleware.NoStore())

	if h := cfg.Admin; h != nil {
		admin.GET("/registrations", h.ListRegistrations)
		admin.GET("/registrations/export.csv", h.ExportRegistrations)
		admin.GET("/email-logs", h.EmailLogs)
		admin.GET("/scheduler", h.Scheduler)
	}

	if h := cfg.Templates; h != nil {
		admin.GET("/templates", h.ListTemplates)
		admin.POST("/templates", h.CreateTemplate)
		admin.GET("/templates/:id", h.GetTemplate)
		admin.PUT("/templates/:id", h.UpdateTemplate)
		admin.DELETE("/templates/:id", h.DeleteTemplate)
		admin.POST("/templates/:id/preview", h.PreviewTemplate)
		admin.POST("/templates/:id/test", h.TestTemplate)

		admin.GET("/quotes", h.ListQuotes)
		admin.POST("/quotes", h.CreateQuote)
		admin.PUT("/quotes/:id", h.UpdateQuote)
		admin.DELETE("/quotes/:id", h.DeleteQuote)
	}

	if h := cfg.Email; h != nil {
		admin.GET("/email/config", h.GetConfig)
		admin.PUT("/email/config", h.UpdateConfig)
		admin.POST("/email/test-config", h.TestConfig)
		admin.POST("/email/send", h.Send)
	}

	return router
}
