package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

type pipeline struct {
	svc    *RegistrationService
	store  *fakeStore
	mailer *fakeMailer
	ledger *fakeLedger
	logs   *fakeLogRepo
}

func newPipeline(withLedger bool) *pipeline {
	p := &pipeline{
		store:  &fakeStore{},
		mailer: &fakeMailer{},
		logs:   &fakeLogRepo{},
	}
	logger := quietLogger()

	var ledger *fakeLedger
	if withLedger {
		ledger = newFakeLedger()
		p.ledger = ledger
	}

	p.svc = NewRegistrationService(
		p.store,
		"Registrations!C:C",
		nil,
		staticContent{},
		templating.NewSeededRenderer(1),
		p.mailer,
		NewDeliveryLog(p.logs, logger),
		metrics.NewMetrics(),
		logger,
	)
	if ledger != nil {
		p.svc.ledger = ledger
	}
	p.svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }
	return p
}

func appErr(t *testing.T, err error) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var ae *models.AppError
	require.ErrorAs(t, err, &ae)
	return ae
}

func TestSubmit_Success(t *testing.T) {
	p := newPipeline(false)

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.EmailSent)
	assert.Equal(t, MsgRegistered, result.Message)
	require.NotNil(t, result.Data)
	assert.Equal(t, "2025-06-01T09:30:00Z", result.Data.RegistrationDate)
	assert.Equal(t, models.NotProvided, result.Data.PresentationLink)

	require.Len(t, p.store.rows, 1)
	assert.Equal(t, "Registered", p.store.rows[0][12])

	require.Equal(t, 1, p.mailer.sendCount())
	msg := p.mailer.sent[0]
	assert.Equal(t, "asha@ucet.ac.in", msg.To)
	assert.Contains(t, msg.HTML, "Null Pointers")
	assert.NotContains(t, msg.HTML, "{{")
	assert.Equal(t, 1, p.mailer.verified)

	require.Len(t, p.logs.logs, 1)
	assert.Equal(t, models.EmailLogStatusSent, p.logs.logs[0].Status)
	assert.Equal(t, "<id@test>", p.logs.logs[0].MessageID)
}

func TestSubmit_ValidationErrorHasNoSideEffects(t *testing.T) {
	p := newPipeline(true)
	form := validForm()
	form.Phone = "12345"
	form.AgreeToTerms = false

	result, err := p.svc.Submit(context.Background(), form)
	assert.Nil(t, result)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
	assert.Equal(t, models.ErrCodeValidation, ae.Code)
	assert.Equal(t, "Phone number must be exactly 10 digits", ae.FieldErrors["phone"])
	assert.Contains(t, ae.FieldErrors, "agreeToTerms")

	assert.Zero(t, p.store.reads)
	assert.Empty(t, p.store.rows)
	assert.Empty(t, p.ledger.claimed)
	assert.Zero(t, p.mailer.sendCount())
}

func TestSubmit_DuplicateIsConflict(t *testing.T) {
	p := newPipeline(false)

	_, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	form := validForm()
	form.Email = "ASHA@UCET.AC.IN"
	_, err = p.svc.Submit(context.Background(), form)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusConflict, ae.StatusCode)
	assert.Equal(t, MsgDuplicateEmail, ae.Message)
	assert.Equal(t, map[string]string{"email": "Email already registered"}, ae.FieldErrors)

	assert.Len(t, p.store.rows, 1, "the duplicate must not append a second row")
	assert.Equal(t, 1, p.mailer.sendCount())
}

func TestSubmit_DuplicateCheckFailsOpen(t *testing.T) {
	p := newPipeline(false)
	p.store.readErr = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, p.store.rows, 1)
}

func TestSubmit_EmailFailureStillSucceeds(t *testing.T) {
	p := newPipeline(false)
	p.mailer.sendErr = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.EmailSent)
	assert.Equal(t, "boom", result.EmailError)
	assert.Equal(t, MsgRegisteredNoMail, result.Message)
	assert.Len(t, p.store.rows, 1)

	require.Len(t, p.logs.logs, 1)
	assert.Equal(t, models.EmailLogStatusFailed, p.logs.logs[0].Status)
	assert.Equal(t, "boom", p.logs.logs[0].ErrorMessage)
}

func TestSubmit_VerifyFailureSkipsSend(t *testing.T) {
	p := newPipeline(false)
	p.mailer.verifyErr = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.Zero(t, p.mailer.sendCount())
}

func TestSubmit_AppendFailureNeverSends(t *testing.T) {
	p := newPipeline(true)
	p.store.appendErr = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	assert.Nil(t, result)

	ae := appErr(t, err)
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)
	assert.Equal(t, MsgPersistFailed, ae.Message)
	assert.Zero(t, p.mailer.sendCount())
	assert.Zero(t, p.mailer.verified)

	assert.Equal(t, []string{"asha@ucet.ac.in"}, p.ledger.released, "claim must be released so the user can retry")
	assert.Empty(t, p.ledger.claimed)
}

func TestSubmit_LedgerRejectsConcurrentDuplicates(t *testing.T) {
	p := newPipeline(true)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.svc.Submit(context.Background(), validForm())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, http.StatusConflict, appErr(t, err).StatusCode)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, []string{"asha@ucet.ac.in"}, emailsIn(p.store.rows))
}

func TestSubmit_LedgerErrorFailsOpen(t *testing.T) {
	p := newPipeline(true)
	p.ledger.err = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestSubmit_DeliveryLogFailureIgnored(t *testing.T) {
	p := newPipeline(false)
	p.logs.err = errBoom

	result, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
}

func TestSubmit_InfoLogsOmitEmail(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	p := newPipeline(false)
	p.svc.logger = logger
	p.svc.deliveryLog = NewDeliveryLog(p.logs, logger)
	p.mailer.sendErr = errBoom
	p.logs.err = errBoom

	_, err := p.svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	_, err = p.svc.Submit(context.Background(), validForm())
	require.Error(t, err)

	var finished, received int
	for _, e := range hook.AllEntries() {
		text := e.Message + fmt.Sprint(e.Data)
		if e.Level <= logrus.InfoLevel {
			assert.NotContains(t, text, "asha@ucet.ac.in", e.Message)
		}
		switch e.Message {
		case "Registration finished":
			finished++
			assert.Equal(t, emailHash(" ASHA@ucet.ac.in"), e.Data["email_hash"])
		case "Registration received":
			received++
			assert.Equal(t, logrus.DebugLevel, e.Level)
		}
	}
	assert.Equal(t, 2, finished)
	assert.Equal(t, 2, received)
}
