package mailer

import (
	"context"
	"fmt"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// ConfigSource yields the SMTP account currently in effect
type ConfigSource interface {
	EmailConfig(ctx context.Context) (models.EmailConfig, error)
}

// Dynamic resolves the account on every call so admin edits apply without a restart
type Dynamic struct {
	source ConfigSource
}

func NewDynamic(source ConfigSource) *Dynamic {
	return &Dynamic{source: source}
}

func (d *Dynamic) current(ctx context.Context) (*SMTP, error) {
	cfg, err := d.source.EmailConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load email config: %w", err)
	}
	return NewSMTP(cfg)
}

func (d *Dynamic) VerifyConnection(ctx context.Context) error {
	s, err := d.current(ctx)
	if err != nil {
		return err
	}
	return s.VerifyConnection(ctx)
}

func (d *Dynamic) Send(ctx context.Context, msg Message) (string, error) {
	s, err := d.current(ctx)
	if err != nil {
		return "", err
	}
	return s.Send(ctx, msg)
}

// StaticSource always returns the same account
type StaticSource models.EmailConfig

func (s StaticSource) EmailConfig(context.Context) (models.EmailConfig, error) {
	return models.EmailConfig(s), nil
}
