package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// EmailLedger reserves registration emails under a unique key, so two
// concurrent submissions with the same address cannot both pass.
type EmailLedger interface {
	// Claim reports false when the email is already taken
	Claim(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

type emailLedger struct {
	db *sql.DB
}

// NewEmailLedger creates a ledger backed by the registration_emails table
func NewEmailLedger(db *sql.DB) EmailLedger {
	return &emailLedger{db: db}
}

// NormalizeEmail is the ledger key: trimmed and lower-cased
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *emailLedger) Claim(ctx context.Context, email string) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO registration_emails (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`,
		NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("claim email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim email rows affected: %w", err)
	}
	return n == 1, nil
}

func (l *emailLedger) Release(ctx context.Context, email string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM registration_emails WHERE email = $1`, NormalizeEmail(email)); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	return nil
}
