package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/cache"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

const emailConfigCacheKey = "email-config"

// Sources of the effective SMTP account
const (
	EmailConfigSourceDatabase    = "database"
	EmailConfigSourceEnvironment = "environment"
)

// EmailSettingsService resolves the SMTP account: the admin-saved record when
// present, otherwise the environment defaults.
type EmailSettingsService struct {
	repo     repositories.EmailSettingsRepository
	defaults models.EmailConfig
	cache    *cache.Cache[*models.EmailConfig]
	logger   *logrus.Logger
}

func NewEmailSettingsService(
	repo repositories.EmailSettingsRepository,
	defaults models.EmailConfig,
	configCache *cache.Cache[*models.EmailConfig],
	logger *logrus.Logger,
) *EmailSettingsService {
	return &EmailSettingsService{
		repo:     repo,
		defaults: defaults,
		cache:    configCache,
		logger:   logger,
	}
}

// EmailConfig implements mailer.ConfigSource. A database error falls back to the
// environment defaults so confirmation emails keep flowing.
func (s *EmailSettingsService) EmailConfig(ctx context.Context) (models.EmailConfig, error) {
	cfg, _ := s.effective(ctx)
	return cfg, nil
}

func (s *EmailSettingsService) effective(ctx context.Context) (models.EmailConfig, string) {
	stored, err := s.cache.GetOrLoad(ctx, emailConfigCacheKey, s.repo.Get)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load stored email settings, using environment")
		return s.defaults, EmailConfigSourceEnvironment
	}
	if stored == nil {
		return s.defaults, EmailConfigSourceEnvironment
	}
	return *stored, EmailConfigSourceDatabase
}

// Get returns the effective account with the password redacted, and where it came from
func (s *EmailSettingsService) Get(ctx context.Context) (models.EmailConfig, string) {
	cfg, source := s.effective(ctx)
	return cfg.Redacted(), source
}

// Update saves cfg. An empty or redacted password keeps the current one as
// long as host, port and user are unchanged.
func (s *EmailSettingsService) Update(ctx context.Context, cfg models.EmailConfig) (models.EmailConfig, error) {
	cfg, err := s.withCurrentPassword(ctx, cfg)
	if err != nil {
		return models.EmailConfig{}, err
	}
	if !cfg.Complete() {
		return models.EmailConfig{}, models.NewValidationError("Incomplete email configuration", map[string]string{
			"config": "host, port, user and password are required",
		})
	}

	if err := s.repo.Save(ctx, cfg); err != nil {
		return models.EmailConfig{}, models.NewDependencyError("Failed to save email configuration", err)
	}
	s.cache.Delete(emailConfigCacheKey)

	s.logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"user": cfg.User,
	}).Info("Email configuration updated")

	return cfg.Redacted(), nil
}

// Test logs in with cfg, or with the effective account when cfg is nil
func (s *EmailSettingsService) Test(ctx context.Context, cfg *models.EmailConfig) error {
	candidate, _ := s.effective(ctx)
	if cfg != nil {
		var err error
		if candidate, err = s.withCurrentPassword(ctx, *cfg); err != nil {
			return err
		}
	}

	smtp, err := mailer.NewSMTP(candidate)
	if err != nil {
		return models.NewBadRequestError("Incomplete email configuration").WithDetails(err.Error())
	}
	if err := smtp.VerifyConnection(ctx); err != nil {
		if !apperrors.IsUnavailable(err) {
			return models.NewInternalError("SMTP connection failed", err)
		}
		return models.NewDependencyError("SMTP connection failed", err).WithDetails(err.Error())
	}
	return nil
}

// withCurrentPassword fills a blank or redacted password from the effective
// account. The stored secret never goes to a different host, port or user.
func (s *EmailSettingsService) withCurrentPassword(ctx context.Context, cfg models.EmailConfig) (models.EmailConfig, error) {
	if cfg.Password != "" && cfg.Password != models.RedactedPassword {
		return cfg, nil
	}
	current, _ := s.effective(ctx)
	if !sameAccount(cfg, current) {
		return models.EmailConfig{}, models.NewValidationError("Password is required when changing the SMTP account", map[string]string{
			"password": "password is required for a new host, port or user",
		})
	}
	cfg.Password = current.Password
	return cfg, nil
}

func sameAccount(a, b models.EmailConfig) bool {
	return strings.EqualFold(strings.TrimSpace(a.Host), strings.TrimSpace(b.Host)) &&
		a.Port == b.Port &&
		strings.TrimSpace(a.User) == strings.TrimSpace(b.User)
}
