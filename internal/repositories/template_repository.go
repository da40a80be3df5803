package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

// TemplateRepository defines the interface for email template data access
type TemplateRepository interface {
	List(ctx context.Context) ([]*models.EmailTemplate, error)
	GetByID(ctx context.Context, id string) (*models.EmailTemplate, error)
	GetByCategory(ctx context.Context, category models.TemplateCategory) (*models.EmailTemplate, error)
	Create(ctx context.Context, t *models.EmailTemplate) error
	Update(ctx context.Context, t *models.EmailTemplate) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type templateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB) TemplateRepository {
	return &templateRepository{db: db}
}

const templateColumns = `id, name, subject, html_content, text_content, variables, category, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	var vars []string
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.HTMLContent, &t.TextContent,
		pq.Array(&vars), &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Variables = vars
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return t, nil
}

func (r *templateRepository) List(ctx context.Context) ([]*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1`

	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template by id: %w", err)
	}
	return t, nil
}

// GetByCategory returns the oldest template of a category
func (r *templateRepository) GetByCategory(ctx context.Context, category models.TemplateCategory) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates
		WHERE category = $1 ORDER BY created_at ASC, id ASC LIMIT 1`

	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, category))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template by category: %w", err)
	}
	return t, nil
}

func (r *templateRepository) Create(ctx context.Context, t *models.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, name, subject, html_content, text_content, variables, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Subject, t.HTMLContent, t.TextContent, pq.Array(t.Variables), t.Category,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "template %s", t.ID)
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *templateRepository) Update(ctx context.Context, t *models.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET name = $2, subject = $3, html_content = $4, text_content = $5,
		    variables = $6, category = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Subject, t.HTMLContent, t.TextContent, pq.Array(t.Variables), t.Category,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperrors.Wrapf(apperrors.ErrNotFound, "template %s", t.ID)
	}
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(res, "template", id)
}

func (r *templateRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return n, nil
}

// uniqueViolation is the Postgres SQLSTATE for a duplicate key
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s %s", kind, id)
	}
	return nil
}
