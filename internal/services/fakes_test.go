package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/mailer"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/templating"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

var errBoom = errors.New("boom")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeStore is an in-memory sheet; column reads return the email column
type fakeStore struct {
	mu        sync.Mutex
	rows      [][]string
	readErr   error
	appendErr error
	reads     int
}

func (f *fakeStore) AppendRow(_ context.Context, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStore) ReadColumn(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := []string{"Email"}
	for _, r := range f.rows {
		out = append(out, r[2])
	}
	return out, nil
}

func (f *fakeStore) ReadRows(_ context.Context) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

type fakeMailer struct {
	mu        sync.Mutex
	verifyErr error
	sendErr   error
	verified  int
	sent      []mailer.Message
}

func (f *fakeMailer) VerifyConnection(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified++
	return f.verifyErr
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, msg)
	return "<id@test>", nil
}

func (f *fakeMailer) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeLedger struct {
	mu       sync.Mutex
	claimed  map[string]bool
	err      error
	released []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{claimed: map[string]bool{}}
}

func (l *fakeLedger) Claim(_ context.Context, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	key := repositories.NormalizeEmail(email)
	if l.claimed[key] {
		return false, nil
	}
	l.claimed[key] = true
	return true, nil
}

func (l *fakeLedger) Release(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := repositories.NormalizeEmail(email)
	delete(l.claimed, key)
	l.released = append(l.released, key)
	return nil
}

type staticContent struct{}

func (staticContent) RegistrationTemplate(context.Context) models.EmailTemplate {
	return templating.DefaultRegistrationTemplate()
}

func (staticContent) Quotes(context.Context) []models.MotivationalQuote {
	return templating.DefaultQuotes()
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []*models.EmailLog
	err  error
}

func (r *fakeLogRepo) Create(_ context.Context, l *models.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	l.ID = len(r.logs) + 1
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeLogRepo) List(_ context.Context, limit int) ([]*models.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*models.EmailLog{}
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

func (r *fakeLogRepo) CountByStatusSince(_ context.Context, since time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	counts := map[string]int{}
	for _, l := range r.logs {
		if !l.CreatedAt.Before(since) {
			counts[l.Status]++
		}
	}
	return counts, nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*models.EmailTemplate
	order     []string
	err       error
	createErr error
	lookups   int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[string]*models.EmailTemplate{}}
}

func (r *fakeTemplateRepo) List(context.Context) ([]*models.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.EmailTemplate
	for _, id := range r.order {
		if t, ok := r.templates[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*models.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) GetByCategory(_ context.Context, c models.TemplateCategory) (*models.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.err != nil {
		return nil, r.err
	}
	for _, id := range r.order {
		if t, ok := r.templates[id]; ok && t.Category == c {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *models.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.templates[t.ID]; exists {
		return apperrors.Wrapf(apperrors.ErrConflict, "template %s", t.ID)
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.templates[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *models.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "template %s", t.ID)
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "template %s", id)
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeTemplateRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.templates), nil
}

type fakeQuoteRepo struct {
	mu     sync.Mutex
	quotes []models.MotivationalQuote
	err    error
}

func (r *fakeQuoteRepo) List(context.Context) ([]models.MotivationalQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]models.MotivationalQuote(nil), r.quotes...), nil
}

func (r *fakeQuoteRepo) Create(_ context.Context, q *models.MotivationalQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.quotes = append(r.quotes, *q)
	return nil
}

func (r *fakeQuoteRepo) Update(_ context.Context, q *models.MotivationalQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quotes {
		if r.quotes[i].ID == q.ID {
			r.quotes[i] = *q
			return nil
		}
	}
	return apperrors.Wrapf(apperrors.ErrNotFound, "quote %s", q.ID)
}

func (r *fakeQuoteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			r.quotes = append(r.quotes[:i], r.quotes[i+1:]...)
			return nil
		}
	}
	return apperrors.Wrapf(apperrors.ErrNotFound, "quote %s", id)
}

func (r *fakeQuoteRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.quotes), nil
}

type fakeSettingsRepo struct {
	mu    sync.Mutex
	saved *models.EmailConfig
	err   error
	gets  int
}

func (r *fakeSettingsRepo) Get(context.Context) (*models.EmailConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	if r.saved == nil {
		return nil, nil
	}
	cp := *r.saved
	return &cp, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, cfg models.EmailConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = &cfg
	return nil
}

func validForm() models.RegistrationForm {
	return models.RegistrationForm{
		TeamLeaderName:   "Asha Kumari",
		Email:            "asha@ucet.ac.in",
		Phone:            "9876543210",
		College:          "UCET",
		Department:       "Computer Science",
		Year:             "3rd",
		TeamName:         "Null Pointers",
		TeamSize:         "4",
		Experience:       "intermediate",
		PresentationLink: "",
		Motivation:       "We like building things",
		AgreeToTerms:     true,
	}
}

func emailsIn(rows [][]string) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, strings.ToLower(r[2]))
	}
	return out
}
