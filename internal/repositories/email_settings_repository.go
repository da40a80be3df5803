package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// EmailSettingsRepository stores the single admin-edited SMTP account
type EmailSettingsRepository interface {
	Get(ctx context.Context) (*models.EmailConfig, error)
	Save(ctx context.Context, cfg models.EmailConfig) error
}

type emailSettingsRepository struct {
	db *sql.DB
}

// NewEmailSettingsRepository creates a new email settings repository
func NewEmailSettingsRepository(db *sql.DB) EmailSettingsRepository {
	return &emailSettingsRepository{db: db}
}

// Get returns nil when no settings have been saved yet
func (r *emailSettingsRepository) Get(ctx context.Context) (*models.EmailConfig, error) {
	query := `
		SELECT host, port, secure, username, password, from_name, from_email, cc, insecure_skip_verify
		FROM email_settings
		WHERE id = 1
	`

	cfg := &models.EmailConfig{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&cfg.Host, &cfg.Port, &cfg.Secure, &cfg.User, &cfg.Password,
		&cfg.FromName, &cfg.FromEmail, &cfg.CC, &cfg.InsecureSkipVerify,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email settings: %w", err)
	}
	return cfg, nil
}

func (r *emailSettingsRepository) Save(ctx context.Context, cfg models.EmailConfig) error {
	query := `
		INSERT INTO email_settings (id, host, port, secure, username, password, from_name, from_email, cc, insecure_skip_verify)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			host = EXCLUDED.host,
			port = EXCLUDED.port,
			secure = EXCLUDED.secure,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			from_name = EXCLUDED.from_name,
			from_email = EXCLUDED.from_email,
			cc = EXCLUDED.cc,
			insecure_skip_verify = EXCLUDED.insecure_skip_verify,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		cfg.Host, cfg.Port, cfg.Secure, cfg.User, cfg.Password,
		cfg.FromName, cfg.FromEmail, cfg.CC, cfg.InsecureSkipVerify,
	)
	if err != nil {
		return fmt.Errorf("save email settings: %w", err)
	}
	return nil
}
