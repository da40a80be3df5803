package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

// Message is one outgoing email. From and CC default to the account settings.
type Message struct {
	To      string
	From    string
	CC      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages over SMTP
type Mailer interface {
	VerifyConnection(ctx context.Context) error
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTP sends with one fixed account
type SMTP struct {
	cfg    models.EmailConfig
	dialer *gomail.Dialer
}

// NewSMTP returns ErrNotConfigured when cfg lacks host or credentials
func NewSMTP(cfg models.EmailConfig) (*SMTP, error) {
	if !cfg.Complete() {
		return nil, apperrors.Wrap(apperrors.ErrNotConfigured, "smtp account incomplete")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Secure
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in via EMAIL_TLS_SKIP_VERIFY
	}
	return &SMTP{cfg: cfg, dialer: d}, nil
}

// VerifyConnection logs in to the server and hangs up
func (s *SMTP) VerifyConnection(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := s.dialer.Dial()
	if err != nil {
		return apperrors.Unavailable(err, fmt.Sprintf("smtp verify %s:%d", s.cfg.Host, s.cfg.Port))
	}
	return conn.Close()
}

// Send delivers msg and returns its Message-ID
func (s *SMTP) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m, id := s.build(msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return "", apperrors.Unavailable(err, "smtp send")
	}
	return id, nil
}

func (s *SMTP) build(msg Message) (*gomail.Message, string) {
	from := msg.From
	if from == "" {
		from = s.cfg.Sender()
	}
	cc := msg.CC
	if cc == "" {
		cc = s.cfg.CC
	}

	id := messageID(from)
	m := gomail.NewMessage()
	if s.cfg.FromName != "" {
		m.SetAddressHeader("From", from, s.cfg.FromName)
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", msg.To)
	if cc != "" {
		m.SetHeader("Cc", cc)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m, id
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
