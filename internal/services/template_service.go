package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/cache"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/validation"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

const (
	registrationTemplateCacheKey = "template:registration"
	quotesCacheKey               = "quotes"
)

// TemplatePreview is a rendered template plus placeholders it uses without declaring
type TemplatePreview struct {
	models.RenderedEmail
	Undeclared []string `json:"undeclared"`
}

// TemplateService manages email templates and motivational quotes
type TemplateService struct {
	templates     repositories.TemplateRepository
	quotes        repositories.QuoteRepository
	renderer      *templating.Renderer
	mailer        mailer.Mailer
	deliveryLog   *DeliveryLog
	templateCache *cache.Cache[models.EmailTemplate]
	quoteCache    *cache.Cache[[]models.MotivationalQuote]
	metrics       *metrics.Metrics
	logger        *logrus.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	templates repositories.TemplateRepository,
	quotes repositories.QuoteRepository,
	renderer *templating.Renderer,
	m mailer.Mailer,
	deliveryLog *DeliveryLog,
	templateCache *cache.Cache[models.EmailTemplate],
	quoteCache *cache.Cache[[]models.MotivationalQuote],
	metrics *metrics.Metrics,
	logger *logrus.Logger,
) *TemplateService {
	return &TemplateService{
		templates:     templates,
		quotes:        quotes,
		renderer:      renderer,
		mailer:        m,
		deliveryLog:   deliveryLog,
		templateCache: templateCache,
		quoteCache:    quoteCache,
		metrics:       metrics,
		logger:        logger,
	}
}

// SeedDefaults stores the default confirmation template and quote pool into empty tables
func (s *TemplateService) SeedDefaults(ctx context.Context) error {
	n, err := s.templates.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		t := templating.DefaultRegistrationTemplate()
		// A conflict means another instance seeded first.
		if err := s.templates.Create(ctx, &t); err != nil && !apperrors.IsConflict(err) {
			return err
		}
		s.logger.WithField("template_id", t.ID).Info("Seeded default registration template")
	}

	n, err = s.quotes.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		quotes := templating.DefaultQuotes()
		for i := range quotes {
			if err := s.quotes.Create(ctx, &quotes[i]); err != nil && !apperrors.IsConflict(err) {
				return err
			}
		}
		s.logger.WithField("count", len(quotes)).Info("Seeded default motivational quotes")
	}

	s.invalidate()
	return nil
}

// RegistrationTemplate returns the oldest registration-category template, or the
// built-in default when none is stored or the database is unreachable.
func (s *TemplateService) RegistrationTemplate(ctx context.Context) models.EmailTemplate {
	t, err := s.templateCache.GetOrLoad(ctx, registrationTemplateCacheKey, func(ctx context.Context) (models.EmailTemplate, error) {
		stored, err := s.templates.GetByCategory(ctx, models.CategoryRegistration)
		if err != nil {
			return models.EmailTemplate{}, err
		}
		if stored == nil {
			return templating.DefaultRegistrationTemplate(), nil
		}
		return *stored, nil
	})
	if err != nil {
		s.metrics.RecordDatabaseError("template_lookup")
		s.logger.WithError(err).Warn("Failed to load registration template, using default")
		return templating.DefaultRegistrationTemplate()
	}
	return t
}

// Quotes returns the quote pool, or the default pool when the database is unreachable
func (s *TemplateService) Quotes(ctx context.Context) []models.MotivationalQuote {
	quotes, err := s.quoteCache.GetOrLoad(ctx, quotesCacheKey, s.quotes.List)
	if err != nil {
		s.metrics.RecordDatabaseError("quote_lookup")
		s.logger.WithError(err).Warn("Failed to load quotes, using defaults")
		return templating.DefaultQuotes()
	}
	return quotes
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]*models.EmailTemplate, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, models.NewDependencyError("Failed to load templates", err)
	}
	if templates == nil {
		templates = []*models.EmailTemplate{}
	}
	return templates, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewDependencyError("Failed to load template", err)
	}
	if t == nil {
		return nil, models.NewNotFoundError(fmt.Sprintf("Template %s not found", id))
	}
	return t, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req models.TemplateRequest) (*models.EmailTemplate, error) {
	t, err := templateFromRequest(uuid.NewString(), req)
	if err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		if apperrors.IsConflict(err) {
			return nil, models.NewConflictError(fmt.Sprintf("Template %s already exists", t.ID), nil)
		}
		return nil, models.NewDependencyError("Failed to create template", err)
	}
	s.invalidate()

	s.logger.WithFields(logrus.Fields{
		"template_id": t.ID,
		"category":    t.Category,
	}).Info("Email template created")
	return t, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, req models.TemplateRequest) (*models.EmailTemplate, error) {
	t, err := templateFromRequest(id, req)
	if err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, models.NewNotFoundError(fmt.Sprintf("Template %s not found", id))
		}
		return nil, models.NewDependencyError("Failed to update template", err)
	}
	s.invalidate()
	return t, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return models.NewNotFoundError(fmt.Sprintf("Template %s not found", id))
		}
		return models.NewDependencyError("Failed to delete template", err)
	}
	s.invalidate()
	return nil
}

// Preview renders a stored template with sample data merged with overrides
func (s *TemplateService) Preview(ctx context.Context, id string, overrides map[string]string) (*TemplatePreview, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TemplatePreview{
		RenderedEmail: s.renderer.Render(*t, templating.SampleData(overrides), s.Quotes(ctx)),
		Undeclared:    templating.UndeclaredPlaceholders(*t),
	}, nil
}

// SendTest renders a stored template with sample data and sends it to req.Email
func (s *TemplateService) SendTest(ctx context.Context, id string, req models.TestTemplateRequest) (string, error) {
	if msg := validation.ValidateEmail(req.Email); msg != "" {
		return "", models.NewValidationError(msg, map[string]string{validation.FieldEmail: msg})
	}
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}

	rendered := s.renderer.Render(*t, templating.SampleData(req.SampleData), s.Quotes(ctx))
	return s.deliver(ctx, s.mailer, "test", t.ID, mailer.Message{
		To:      req.Email,
		Subject: "[TEST] " + rendered.Subject,
		HTML:    rendered.HTMLContent,
		Text:    rendered.TextContent,
	})
}

// SendEmail sends arbitrary content, through req.Config when given
func (s *TemplateService) SendEmail(ctx context.Context, req models.SendEmailRequest) (string, error) {
	if msg := validation.ValidateEmail(req.To); msg != "" {
		return "", models.NewValidationError(msg, map[string]string{"to": msg})
	}
	if req.HTMLContent == "" && req.TextContent == "" {
		return "", models.NewValidationError("Email content is required", map[string]string{
			"content": "htmlContent or textContent is required",
		})
	}

	var via mailer.Mailer = s.mailer
	if req.Config != nil {
		smtp, err := mailer.NewSMTP(*req.Config)
		if err != nil {
			return "", models.NewBadRequestError("Incomplete email configuration").WithDetails(err.Error())
		}
		via = smtp
	}

	return s.deliver(ctx, via, "custom", "", mailer.Message{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTMLContent,
		Text:    req.TextContent,
	})
}

func (s *TemplateService) deliver(ctx context.Context, via mailer.Mailer, kind, templateID string, msg mailer.Message) (string, error) {
	id, err := via.Send(ctx, msg)
	s.metrics.RecordEmail(kind, err == nil)
	s.deliveryLog.Record(ctx, &models.EmailLog{
		RecipientEmail: msg.To,
		TemplateID:     templateID,
		Subject:        msg.Subject,
		MessageID:      id,
	}, err)
	if err != nil {
		return "", sendError(err)
	}
	return id, nil
}

// sendError maps a mailer failure to the response the admin sees
func sendError(err error) error {
	switch {
	case apperrors.IsNotConfigured(err):
		return models.NewServiceUnavailableError("Email is not configured").WithDetails(err.Error())
	case apperrors.IsUnavailable(err):
		return models.NewDependencyError("Failed to send email", err).WithDetails(err.Error())
	default:
		return models.NewInternalError("Failed to send email", err)
	}
}

func (s *TemplateService) ListQuotes(ctx context.Context) ([]models.MotivationalQuote, error) {
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		return nil, models.NewDependencyError("Failed to load quotes", err)
	}
	if quotes == nil {
		quotes = []models.MotivationalQuote{}
	}
	return quotes, nil
}

func (s *TemplateService) CreateQuote(ctx context.Context, req models.QuoteRequest) (*models.MotivationalQuote, error) {
	q := quoteFromRequest(uuid.NewString(), req)
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, models.NewDependencyError("Failed to create quote", err)
	}
	s.quoteCache.Delete(quotesCacheKey)
	return q, nil
}

func (s *TemplateService) UpdateQuote(ctx context.Context, id string, req models.QuoteRequest) (*models.MotivationalQuote, error) {
	q := quoteFromRequest(id, req)
	if err := s.quotes.Update(ctx, q); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, models.NewNotFoundError(fmt.Sprintf("Quote %s not found", id))
		}
		return nil, models.NewDependencyError("Failed to update quote", err)
	}
	s.quoteCache.Delete(quotesCacheKey)
	return q, nil
}

func (s *TemplateService) DeleteQuote(ctx context.Context, id string) error {
	if err := s.quotes.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return models.NewNotFoundError(fmt.Sprintf("Quote %s not found", id))
		}
		return models.NewDependencyError("Failed to delete quote", err)
	}
	s.quoteCache.Delete(quotesCacheKey)
	return nil
}

func (s *TemplateService) invalidate() {
	s.templateCache.Flush()
	s.quoteCache.Flush()
}

func templateFromRequest(id string, req models.TemplateRequest) (*models.EmailTemplate, error) {
	category := req.Category
	if category == "" {
		category = models.CategoryCustom
	}
	if !category.Valid() {
		return nil, models.NewValidationError("Invalid template category", map[string]string{
			"category": fmt.Sprintf("unknown category %q", category),
		})
	}
	if req.HTMLContent == "" && req.TextContent == "" {
		return nil, models.NewValidationError("Template content is required", map[string]string{
			"content": "htmlContent or textContent is required",
		})
	}

	vars := req.Variables
	if len(vars) == 0 {
		vars = templating.CategoryVariables(category)
	}
	if vars == nil {
		vars = templating.Placeholders(req.Subject + "\n" + req.HTMLContent + "\n" + req.TextContent)
	}

	return &models.EmailTemplate{
		ID:          id,
		Name:        req.Name,
		Subject:     req.Subject,
		HTMLContent: req.HTMLContent,
		TextContent: req.TextContent,
		Variables:   vars,
		Category:    category,
	}, nil
}

func quoteFromRequest(id string, req models.QuoteRequest) *models.MotivationalQuote {
	author := req.Author
	if author == "" {
		author = "Unknown"
	}
	return &models.MotivationalQuote{
		ID:       id,
		Text:     req.Text,
		Author:   author,
		Category: req.Category,
	}
}
