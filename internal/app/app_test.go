package app

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/sheets"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

func TestAssembleWiresServices(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// sql.Open does not dial, so no server is needed to wire the repositories
	db, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	m := metrics.NewMetrics()
	sheet, err := sheets.NewWithOptions(context.Background(), "sheet-id", "Registrations", m,
		option.WithEndpoint("http://127.0.0.1:1/"), option.WithoutAuthentication())
	require.NoError(t, err)

	cfg := &config.Config{
		Email:        models.EmailConfig{Host: "smtp.example.com", Port: 587},
		Cache:        config.CacheConfig{TTL: time.Minute},
		Registration: config.RegistrationConfig{EmailLedger: true},
	}

	deps := Assemble(cfg, db, sheet, m, logger)

	assert.Same(t, sheet, deps.Sheet)
	assert.NotNil(t, deps.Registration)
	assert.NotNil(t, deps.Templates)
	assert.NotNil(t, deps.Admin)
	assert.NotNil(t, deps.Mailer)

	got, source := deps.Settings.Get(context.Background())
	assert.Equal(t, "smtp.example.com", got.Host)
	assert.Equal(t, "environment", source)
}
