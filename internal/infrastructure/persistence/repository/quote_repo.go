package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// QuoteRepository implements port.QuoteRepository
type QuoteRepository struct {
	logger *zap.Logger
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(logger *zap.Logger) *QuoteRepository {
	return &QuoteRepository{logger: logger}
}

// Create inserts a quote and sets its ID
func (r *QuoteRepository) Create(ctx context.Context, q *entity.Quote) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO quotes (
			company_id, client_id, user_id, assigned_user_id, status_id, number,
			date, due_date, amount, balance, is_deleted, deleted_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.CompanyID, q.ClientID, q.UserID, q.AssignedUserID, q.StatusID, q.Number,
		dateValue(q.Date), dateValue(q.DueDate), q.Amount, q.Balance,
		boolInt(q.IsDeleted), timestampValue(q.DeletedAt), q.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create quote", zap.String("number", q.Number), zap.Error(err))
		return fmt.Errorf("failed to create quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	q.ID = id
	return nil
}

// FindExpired returns sent quotes due in [from, to). Dates compare by calendar day.
func (r *QuoteRepository) FindExpired(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT q.id, q.company_id, q.client_id, q.user_id, q.assigned_user_id, q.status_id,
			q.number, q.date, q.due_date, q.amount, q.balance, q.created_at
		FROM quotes q
		JOIN clients c ON c.id = q.client_id
		JOIN companies co ON co.id = q.company_id
		WHERE q.status_id = ?
			AND q.is_deleted = 0
			AND q.deleted_at IS NULL
			AND q.due_date IS NOT NULL
			AND q.due_date >= ?
			AND q.due_date < ?
			AND c.is_deleted = 0
			AND c.deleted_at IS NULL
			AND co.is_disabled = 0
		ORDER BY q.id
	`, entity.QuoteStatusSent, from.Format(entity.DateLayout), to.Format(entity.DateLayout))
	if err != nil {
		r.logger.Error("Failed to query expired quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to query expired quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*entity.Quote
	for rows.Next() {
		var (
			q             entity.Quote
			date, dueDate sql.NullString
		)
		if err := rows.Scan(
			&q.ID, &q.CompanyID, &q.ClientID, &q.UserID, &q.AssignedUserID, &q.StatusID,
			&q.Number, &date, &dueDate, &q.Amount, &q.Balance, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.Date = parseDate(date)
		q.DueDate = parseDate(dueDate)
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

var _ port.QuoteRepository = (*QuoteRepository)(nil)
