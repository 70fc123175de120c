package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// NotificationLogRepository implements port.NotificationLogRepository
type NotificationLogRepository struct {
	logger *zap.Logger
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(logger *zap.Logger) *NotificationLogRepository {
	return &NotificationLogRepository{logger: logger}
}

// Create creates a new notification log record
func (r *NotificationLogRepository) Create(ctx context.Context, n *entity.NotificationLog) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	result, err := ex.ExecContext(ctx, `
		INSERT INTO notification_logs (
			task_id, company_id, user_id, channel, recipient, subject,
			status, attempts, error_message, sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.TaskID,
		n.CompanyID,
		n.UserID,
		n.Channel,
		n.Recipient,
		n.Subject,
		n.Status,
		n.Attempts,
		n.ErrorMessage,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification log",
			zap.String("task_id", n.TaskID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	return nil
}

// GetByTaskID retrieves a notification log by its task ID
func (r *NotificationLogRepository) GetByTaskID(ctx context.Context, taskID string) (*entity.NotificationLog, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		n        entity.NotificationLog
		errorMsg sql.NullString
		sentAt   sql.NullTime
	)
	err = ex.QueryRowContext(ctx, `
		SELECT id, task_id, company_id, user_id, channel, recipient, subject,
			status, attempts, error_message, sent_at, created_at, updated_at
		FROM notification_logs
		WHERE task_id = ?
	`, taskID).Scan(
		&n.ID,
		&n.TaskID,
		&n.CompanyID,
		&n.UserID,
		&n.Channel,
		&n.Recipient,
		&n.Subject,
		&n.Status,
		&n.Attempts,
		&errorMsg,
		&sentAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get notification log", zap.String("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}

	if errorMsg.Valid {
		n.ErrorMessage = errorMsg.String
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	return &n, nil
}

// UpdateStatus records a delivery outcome. SENT also stamps sent_at.
func (r *NotificationLogRepository) UpdateStatus(ctx context.Context, taskID, status string, attempts int, errorMsg string) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	var sentAt interface{}
	if status == entity.NotificationStatusSent {
		sentAt = now
	}

	result, err := ex.ExecContext(ctx, `
		UPDATE notification_logs
		SET status = ?, attempts = ?, error_message = ?, sent_at = COALESCE(?, sent_at), updated_at = ?
		WHERE task_id = ?
	`, status, attempts, errorMsg, sentAt, now, taskID)
	if err != nil {
		r.logger.Error("Failed to update notification log",
			zap.String("task_id", taskID),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrNotFound
	}
	return nil
}

var _ port.NotificationLogRepository = (*NotificationLogRepository)(nil)
