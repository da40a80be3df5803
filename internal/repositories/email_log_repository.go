package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// EmailLogRepository records delivery attempts
type EmailLogRepository interface {
	Create(ctx context.Context, log *models.EmailLog) error
	List(ctx context.Context, limit int) ([]*models.EmailLog, error)
	CountByStatusSince(ctx context.Context, since time.Time) (map[string]int, error)
}

type emailLogRepository struct {
	db *sql.DB
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db *sql.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	query := `
		INSERT INTO email_logs (recipient_email, template_id, subject, status, message_id, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		log.RecipientEmail, log.TemplateID, log.Subject, log.Status, log.MessageID, log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return nil
}

// List returns the newest entries first
func (r *emailLogRepository) List(ctx context.Context, limit int) ([]*models.EmailLog, error) {
	query := `
		SELECT id, recipient_email, template_id, subject, status, message_id, error_message, created_at
		FROM email_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.EmailLog
	for rows.Next() {
		l := &models.EmailLog{}
		if err := rows.Scan(&l.ID, &l.RecipientEmail, &l.TemplateID, &l.Subject,
			&l.Status, &l.MessageID, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *emailLogRepository) CountByStatusSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM email_logs WHERE created_at >= $1 GROUP BY status`, since)
	if err != nil {
		return nil, fmt.Errorf("count email logs: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan email log count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
