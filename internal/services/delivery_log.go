package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
)

// DeliveryLog writes email attempts to email_logs. Failures to write are logged
// and never affect the caller.
type DeliveryLog struct {
	repo   repositories.EmailLogRepository
	logger *logrus.Logger
}

func NewDeliveryLog(repo repositories.EmailLogRepository, logger *logrus.Logger) *DeliveryLog {
	return &DeliveryLog{repo: repo, logger: logger}
}

// Record stores entry with its status derived from sendErr. A nil DeliveryLog is a no-op.
func (d *DeliveryLog) Record(ctx context.Context, entry *models.EmailLog, sendErr error) {
	if d == nil || d.repo == nil {
		return
	}

	entry.Status = models.EmailLogStatusSent
	if sendErr != nil {
		entry.Status = models.EmailLogStatusFailed
		entry.ErrorMessage = sendErr.Error()
	}

	if err := d.repo.Create(ctx, entry); err != nil {
		d.logger.WithFields(logrus.Fields{
			"recipient_hash": emailHash(entry.RecipientEmail),
			"status":         entry.Status,
		}).WithError(err).Warn("Failed to record email delivery")
	}
}
