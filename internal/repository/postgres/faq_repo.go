// internal/repository/postgres/faq_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"cobramax-service/internal/domain/chatbot"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FAQRepository struct {
	db *pgxpool.Pool
}

func NewFAQRepository(db *pgxpool.Pool) *FAQRepository {
	return &FAQRepository{db: db}
}

const faqColumns = `
	id, question, answer, category, keywords, is_active, times_asked,
	created_by, created_at, updated_at
`

func scanFAQ(row pgx.Row) (*chatbot.FAQ, error) {
	var f chatbot.FAQ
	err := row.Scan(
		&f.ID, &f.Question, &f.Answer, &f.Category, &f.Keywords,
		&f.IsActive, &f.TimesAsked, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan faq: %w", err)
	}
	return &f, nil
}

func (r *FAQRepository) ListActive(ctx context.Context) ([]chatbot.FAQ, error) {
	query := fmt.Sprintf(`SELECT %s FROM faqs WHERE is_active ORDER BY category, times_asked DESC`, faqColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	var faqs []chatbot.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, *f)
	}
	return faqs, rows.Err()
}

func (r *FAQRepository) ListActiveByCategory(ctx context.Context, category string) ([]chatbot.FAQ, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM faqs WHERE is_active AND category = $1 ORDER BY times_asked DESC`,
		faqColumns,
	)

	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs by category: %w", err)
	}
	defer rows.Close()

	var faqs []chatbot.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, *f)
	}
	return faqs, rows.Err()
}

// ListPopular returns the most consulted active entries.
func (r *FAQRepository) ListPopular(ctx context.Context, limit int) ([]chatbot.FAQ, error) {
	if limit <= 0 {
		limit = 8
	}

	query := fmt.Sprintf(
		`SELECT %s FROM faqs WHERE is_active ORDER BY times_asked DESC LIMIT $1`,
		faqColumns,
	)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular faqs: %w", err)
	}
	defer rows.Close()

	var faqs []chatbot.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, *f)
	}
	return faqs, rows.Err()
}

// Search matches any of the query's words against question, answer and
// keywords, most consulted first.
func (r *FAQRepository) Search(ctx context.Context, query string) ([]chatbot.FAQ, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(words))
	args := make([]interface{}, 0, len(words))
	for i, w := range words {
		conditions = append(conditions, fmt.Sprintf(
			"(question ILIKE $%d OR answer ILIKE $%d OR array_to_string(keywords, ',') ILIKE $%d)",
			i+1, i+1, i+1,
		))
		args = append(args, "%"+w+"%")
	}

	sqlQuery := fmt.Sprintf(
		`SELECT %s FROM faqs WHERE is_active AND (%s) ORDER BY times_asked DESC`,
		faqColumns, strings.Join(conditions, " OR "),
	)

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search faqs: %w", err)
	}
	defer rows.Close()

	var faqs []chatbot.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, *f)
	}
	return faqs, rows.Err()
}

// IncrementTimesAsked bumps the consultation counter by one.
func (r *FAQRepository) IncrementTimesAsked(ctx context.Context, id int64) error {
	query := `UPDATE faqs SET times_asked = times_asked + 1, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment faq counter: %w", err)
	}
	return nil
}
