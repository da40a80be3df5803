package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/sheets"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/validation"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// Stage is a step of one submission, attached to log lines
type Stage string

const (
	StageReceived          Stage = "received"
	StageValidating        Stage = "validating"
	StageRejected          Stage = "rejected"
	StageDuplicateChecking Stage = "duplicate_checking"
	StageConflict          Stage = "conflict"
	StagePersisting        Stage = "persisting"
	StagePersistFailed     Stage = "persist_failed"
	StageEmailSending      Stage = "email_sending"
	StageCompleted         Stage = "completed"
)

// Terminal outcomes, as counted in metrics
const (
	OutcomeRejected        = "rejected"
	OutcomeConflict        = "conflict"
	OutcomePersistFailed   = "persist_failed"
	OutcomeCompleted       = "completed"
	OutcomeCompletedNoMail = "completed_without_email"
)

// Response messages
const (
	MsgValidationFailed = "Please fix the validation errors"
	MsgDuplicateEmail   = "This email address is already registered. Please use a different email."
	MsgDuplicateField   = "Email already registered"
	MsgPersistFailed    = "Failed to save registration data. Please try again."
	MsgRegistered       = "Registration successful! A verification email has been sent to your email address."
	MsgRegisteredNoMail = "Registration successful! However, there was an issue sending the verification email. Please contact us if you don't receive it within 24 hours."
)

// ConfirmationContent supplies the template and quote pool for confirmation emails
type ConfirmationContent interface {
	RegistrationTemplate(ctx context.Context) models.EmailTemplate
	Quotes(ctx context.Context) []models.MotivationalQuote
}

// RegistrationService runs the public registration pipeline
type RegistrationService struct {
	store       sheets.Store
	emailRange  string
	ledger      repositories.EmailLedger
	content     ConfirmationContent
	renderer    *templating.Renderer
	mailer      mailer.Mailer
	deliveryLog *DeliveryLog
	metrics     *metrics.Metrics
	logger      *logrus.Logger
	now         func() time.Time
}

// NewRegistrationService creates a new registration service. emailRange is the
// A1 range holding the registered emails; ledger may be nil.
func NewRegistrationService(
	store sheets.Store,
	emailRange string,
	ledger repositories.EmailLedger,
	content ConfirmationContent,
	renderer *templating.Renderer,
	m mailer.Mailer,
	deliveryLog *DeliveryLog,
	metrics *metrics.Metrics,
	logger *logrus.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:       store,
		emailRange:  emailRange,
		ledger:      ledger,
		content:     content,
		renderer:    renderer,
		mailer:      m,
		deliveryLog: deliveryLog,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates, deduplicates, stores and confirms one registration.
// Validation, duplicate and storage failures are returned as *models.AppError.
// A failed confirmation email still yields a successful result with EmailSent false.
func (s *RegistrationService) Submit(ctx context.Context, form models.RegistrationForm) (*models.RegistrationResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"email_hash": emailHash(form.Email),
		"team":       form.TeamName,
	})
	log.WithFields(logrus.Fields{
		"stage": StageReceived,
		"email": form.Email,
	}).Debug("Registration received")

	log.WithField("stage", StageValidating).Debug("Validating registration")
	if errs := validation.ValidateAll(form); len(errs) > 0 {
		s.finish(log, StageRejected, OutcomeRejected)
		return nil, models.NewValidationError(MsgValidationFailed, errs)
	}

	log.WithField("stage", StageDuplicateChecking).Debug("Checking for duplicate email")
	if s.isDuplicate(ctx, form.Email, log) {
		s.finish(log, StageConflict, OutcomeConflict)
		return nil, duplicateError()
	}

	claimed, conflict := s.claim(ctx, form.Email, log)
	if conflict {
		s.finish(log, StageConflict, OutcomeConflict)
		return nil, duplicateError()
	}

	log.WithField("stage", StagePersisting).Debug("Appending registration row")
	reg := models.NewRegistration(form, s.now())
	if err := s.store.AppendRow(ctx, sheets.Row(reg)); err != nil {
		if claimed {
			s.release(ctx, form.Email, log)
		}
		log.WithError(err).Error("Failed to save registration")
		s.finish(log, StagePersistFailed, OutcomePersistFailed)
		return nil, models.NewDependencyError(MsgPersistFailed, err)
	}

	log.WithField("stage", StageEmailSending).Debug("Sending confirmation email")
	result := &models.RegistrationResult{
		Success: true,
		Data:    &reg,
	}
	if err := s.sendConfirmation(ctx, form); err != nil {
		log.WithError(err).Warn("Registration stored but confirmation email failed")
		result.Message = MsgRegisteredNoMail
		result.EmailError = err.Error()
		s.finish(log, StageCompleted, OutcomeCompletedNoMail)
		return result, nil
	}

	result.Message = MsgRegistered
	result.EmailSent = true
	s.finish(log, StageCompleted, OutcomeCompleted)
	return result, nil
}

// isDuplicate scans the email column. Read failures count as "not duplicate"
// so an unreachable sheet never blocks a registration.
func (s *RegistrationService) isDuplicate(ctx context.Context, email string, log *logrus.Entry) bool {
	emails, err := s.store.ReadColumn(ctx, s.emailRange)
	if err != nil {
		log.WithError(err).Warn("Duplicate check failed, continuing without it")
		s.metrics.RecordFailOpen()
		return false
	}

	needle := strings.ToLower(email)
	for _, existing := range emails {
		if strings.ToLower(existing) == needle {
			return true
		}
	}
	return false
}

// claim reserves the email in the ledger. conflict is true when another
// submission already holds it; ledger errors fail open.
func (s *RegistrationService) claim(ctx context.Context, email string, log *logrus.Entry) (claimed, conflict bool) {
	if s.ledger == nil {
		return false, false
	}
	ok, err := s.ledger.Claim(ctx, email)
	if err != nil {
		log.WithError(err).Warn("Email ledger unavailable, continuing without it")
		s.metrics.RecordFailOpen()
		return false, false
	}
	return ok, !ok
}

func (s *RegistrationService) release(ctx context.Context, email string, log *logrus.Entry) {
	if err := s.ledger.Release(ctx, email); err != nil {
		log.WithError(err).Error("Failed to release email claim")
	}
}

func (s *RegistrationService) sendConfirmation(ctx context.Context, form models.RegistrationForm) error {
	tmpl := s.content.RegistrationTemplate(ctx)
	rendered := s.renderer.Render(tmpl, templating.RegistrationData(form), s.content.Quotes(ctx))

	entry := &models.EmailLog{
		RecipientEmail: form.Email,
		TemplateID:     tmpl.ID,
		Subject:        rendered.Subject,
	}

	err := s.mailer.VerifyConnection(ctx)
	if err == nil {
		entry.MessageID, err = s.mailer.Send(ctx, mailer.Message{
			To:      form.Email,
			Subject: rendered.Subject,
			HTML:    rendered.HTMLContent,
			Text:    rendered.TextContent,
		})
	}

	s.metrics.RecordEmail("confirmation", err == nil)
	s.deliveryLog.Record(ctx, entry, err)
	return err
}

func (s *RegistrationService) finish(log *logrus.Entry, stage Stage, outcome string) {
	s.metrics.RecordRegistration(outcome)
	log.WithFields(logrus.Fields{
		"stage":   stage,
		"outcome": outcome,
	}).Info("Registration finished")
}

// emailHash identifies an address in logs without recording it. Case and
// surrounding space do not change the hash.
func emailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:6])
}

func duplicateError() *models.AppError {
	return models.NewConflictError(MsgDuplicateEmail, map[string]string{
		validation.FieldEmail: MsgDuplicateField,
	})
}
