// Package app assembles the services shared by the HTTP server and regctl.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/cache"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/sheets"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// Deps holds the wired services
type Deps struct {
	Sheet        *sheets.Client
	Mailer       mailer.Mailer
	Settings     *services.EmailSettingsService
	Templates    *services.TemplateService
	Registration *services.RegistrationService
	Admin        *services.AdminService
	Metrics      *metrics.Metrics
}

// Build connects to the registration sheet and wires every service on top of db
func Build(ctx context.Context, cfg *config.Config, db *sql.DB, logger *logrus.Logger) (*Deps, error) {
	m := metrics.NewMetrics()

	sheet, err := sheets.New(ctx, cfg.Sheets, m)
	if err != nil {
		return nil, fmt.Errorf("connect to registration sheet: %w", err)
	}
	return Assemble(cfg, db, sheet, m, logger), nil
}

// Assemble wires the services around an existing sheet client
func Assemble(cfg *config.Config, db *sql.DB, sheet *sheets.Client, m *metrics.Metrics, logger *logrus.Logger) *Deps {
	ttl := cfg.Cache.TTL

	templateRepo := repositories.NewTemplateRepository(db)
	quoteRepo := repositories.NewQuoteRepository(db)
	settingsRepo := repositories.NewEmailSettingsRepository(db)
	logRepo := repositories.NewEmailLogRepository(db)

	settings := services.NewEmailSettingsService(settingsRepo, cfg.Email, cache.New[*models.EmailConfig](ttl), logger)
	dynamicMailer := mailer.NewDynamic(settings)
	deliveryLog := services.NewDeliveryLog(logRepo, logger)
	renderer := templating.NewRenderer()

	templates := services.NewTemplateService(
		templateRepo,
		quoteRepo,
		renderer,
		dynamicMailer,
		deliveryLog,
		cache.New[models.EmailTemplate](ttl),
		cache.New[[]models.MotivationalQuote](ttl),
		m,
		logger,
	)

	var ledger repositories.EmailLedger
	if cfg.Registration.EmailLedger {
		ledger = repositories.NewEmailLedger(db)
	}

	registration := services.NewRegistrationService(
		sheet,
		sheet.ColumnRange(sheets.EmailColumn),
		ledger,
		templates,
		renderer,
		dynamicMailer,
		deliveryLog,
		m,
		logger,
	)

	return &Deps{
		Sheet:        sheet,
		Mailer:       dynamicMailer,
		Settings:     settings,
		Templates:    templates,
		Registration: registration,
		Admin:        services.NewAdminService(sheet, logRepo, logger),
		Metrics:      m,
	}
}
