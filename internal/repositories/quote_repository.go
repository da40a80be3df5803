package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
)

// QuoteRepository defines the interface for motivational quote data access
type QuoteRepository interface {
	List(ctx context.Context) ([]models.MotivationalQuote, error)
	Create(ctx context.Context, q *models.MotivationalQuote) error
	Update(ctx context.Context, q *models.MotivationalQuote) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type quoteRepository struct {
	db *sql.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *sql.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) List(ctx context.Context) ([]models.MotivationalQuote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, author, category FROM motivational_quotes ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.MotivationalQuote
	for rows.Next() {
		var q models.MotivationalQuote
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &q.Category); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *quoteRepository) Create(ctx context.Context, q *models.MotivationalQuote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO motivational_quotes (id, text, author, category) VALUES ($1, $2, $3, $4)`,
		q.ID, q.Text, q.Author, q.Category)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "quote %s", q.ID)
		}
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) Update(ctx context.Context, q *models.MotivationalQuote) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE motivational_quotes SET text = $2, author = $3, category = $4 WHERE id = $1`,
		q.ID, q.Text, q.Author, q.Category)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	return requireAffected(res, "quote", q.ID)
}

func (r *quoteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM motivational_quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return requireAffected(res, "quote", id)
}

func (r *quoteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motivational_quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}

