package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/app"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/database"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/handlers"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/middleware"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/scheduler"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logger.Level, cfg.Logger.Format)

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}

	ctx := context.Background()

	// Initialize services
	deps, err := app.Build(ctx, cfg, db, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize services")
	}

	if err := deps.Templates.SeedDefaults(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to seed default template and quotes")
	}
	if created, err := deps.Sheet.EnsureHeaders(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to check sheet header row")
	} else if created {
		appLogger.Info("Wrote header row to empty registration sheet")
	}

	notifier := newNotifier(cfg, appLogger)

	// Initialize scheduler
	cronScheduler := scheduler.NewCronScheduler(
		deps.Admin,
		notifier,
		deps.Sheet,
		cfg.Scheduler,
		cfg.Registration.EventName,
		deps.Metrics,
		appLogger,
	)
	if err := cronScheduler.Start(); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer cronScheduler.Stop()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, deps.Metrics, appLogger)
	defer rateLimiter.Stop()

	// Setup Gin router
	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Registration: handlers.NewRegistrationHandler(deps.Registration, appLogger),
		Admin:        handlers.NewAdminHandler(deps.Admin, cronScheduler, appLogger),
		Templates:    handlers.NewTemplateHandler(deps.Templates, appLogger),
		Email:        handlers.NewEmailHandler(deps.Settings, deps.Templates, appLogger),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": handlers.DBPinger(db),
			"sheet":    deps.Sheet,
		}, appLogger, cfg.Server.Version),
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminToken:     cfg.Admin.Token,
		HSTS:           cfg.Server.HSTS,
		OnPanic:        panicAlert(notifier, appLogger),
		Metrics:        deps.Metrics,
		Logger:         appLogger,
	})
	if err := router.SetTrustedProxies(cfg.Registration.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid TRUSTED_PROXIES")
	}
	if cfg.Admin.Token == "" {
		appLogger.Warn("ADMIN_TOKEN is empty, admin API is disabled")
	}

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.WithField("addr", serverAddr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

func newNotifier(cfg *config.Config, appLogger *logrus.Logger) services.Notifier {
	if !cfg.Telegram.Enabled() {
		appLogger.Info("Telegram not configured, digests go to the log")
		return services.NewLogNotifier(appLogger)
	}

	tg, err := services.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to initialize Telegram bot, digests go to the log")
		return services.NewLogNotifier(appLogger)
	}
	return tg
}

// panicAlert forwards recovered panics to the organisers' channel without
// holding up the response
func panicAlert(notifier services.Notifier, appLogger *logrus.Logger) middleware.PanicNotifier {
	return func(c *gin.Context, err interface{}) {
		text := fmt.Sprintf("Panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if nerr := notifier.Notify(ctx, text); nerr != nil {
				appLogger.WithError(nerr).Warn("Failed to send panic alert")
			}
		}()
	}
}
