package mailer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

func testConfig() models.EmailConfig {
	return models.EmailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		User:      "noreply@ucet.ac.in",
		Password:  "secret",
		FromName:  "UCET Hacks 2025",
		FromEmail: "hello@ucet.ac.in",
		CC:        "organisers@ucet.ac.in",
	}
}

func TestNewSMTP_Incomplete(t *testing.T) {
	cfg := testConfig()
	cfg.Password = ""

	_, err := NewSMTP(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotConfigured))
}

func TestNewSMTP_VerifiesCertificatesByDefault(t *testing.T) {
	s, err := NewSMTP(testConfig())
	require.NoError(t, err)
	assert.False(t, s.dialer.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "smtp.example.com", s.dialer.TLSConfig.ServerName)
}

func TestSMTP_BuildMessage(t *testing.T) {
	s, err := NewSMTP(testConfig())
	require.NoError(t, err)

	m, id := s.build(Message{
		To:      "asha@ucet.ac.in",
		Subject: "Welcome",
		HTML:    "<p>Hi</p>",
		Text:    "Hi",
	})

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.True(t, strings.HasPrefix(id, "<") && strings.HasSuffix(id, "@ucet.ac.in>"), id)
	assert.Contains(t, raw, "Message-ID: "+id)
	assert.Contains(t, raw, "hello@ucet.ac.in")
	assert.Contains(t, raw, "Cc: organisers@ucet.ac.in")
	assert.Contains(t, raw, "To: asha@ucet.ac.in")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/html")
}

func TestSMTP_BuildMessage_ExplicitFromAndCC(t *testing.T) {
	cfg := testConfig()
	cfg.FromName = ""
	s, err := NewSMTP(cfg)
	require.NoError(t, err)

	m, _ := s.build(Message{To: "a@b.io", From: "other@x.io", CC: "cc@x.io", Text: "plain"})
	assert.Equal(t, []string{"other@x.io"}, m.GetHeader("From"))
	assert.Equal(t, []string{"cc@x.io"}, m.GetHeader("Cc"))
}

func TestSMTP_VerifyConnectionFails(t *testing.T) {
	// Accept and immediately hang up so the SMTP greeting never arrives.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	cfg := testConfig()
	cfg.Host = host
	cfg.Port = port

	s, err := NewSMTP(cfg)
	require.NoError(t, err)
	assert.True(t, apperrors.IsUnavailable(s.VerifyConnection(context.Background())))

	_, err = s.Send(context.Background(), Message{To: "a@b.io", Text: "x"})
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestSMTP_CanceledContext(t *testing.T) {
	s, err := NewSMTP(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.VerifyConnection(ctx), context.Canceled)
	_, err = s.Send(ctx, Message{To: "a@b.io"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperrors.IsUnavailable(err))
}

type failingSource struct{}

func (failingSource) EmailConfig(context.Context) (models.EmailConfig, error) {
	return models.EmailConfig{}, errors.New("settings table missing")
}

func TestDynamic_SourceErrors(t *testing.T) {
	d := NewDynamic(failingSource{})
	assert.Error(t, d.VerifyConnection(context.Background()))
	_, err := d.Send(context.Background(), Message{To: "a@b.io"})
	assert.ErrorContains(t, err, "settings table missing")
}

func TestDynamic_IncompleteConfig(t *testing.T) {
	d := NewDynamic(StaticSource(models.EmailConfig{Host: "smtp.example.com"}))
	err := d.VerifyConnection(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotConfigured))
}
