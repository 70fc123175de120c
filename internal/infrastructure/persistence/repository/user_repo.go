package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(logger *zap.Logger) *UserRepository {
	return &UserRepository{logger: logger}
}

// Create inserts a user and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, deleted_at) VALUES (?, ?, ?, ?)
	`, user.FirstName, user.LastName, user.Email, timestampValue(user.DeletedAt))
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	if user.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// AttachToCompany inserts a company membership with its notification settings
func (r *UserRepository) AttachToCompany(ctx context.Context, cu *entity.CompanyUser) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	notifications := cu.Notifications
	if notifications.Email == nil {
		notifications.Email = []string{}
	}
	encoded, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO company_users (company_id, user_id, is_owner, is_admin, notifications)
		VALUES (?, ?, ?, ?, ?)
	`, cu.CompanyID, cu.UserID, boolInt(cu.IsOwner), boolInt(cu.IsAdmin), string(encoded))
	if err != nil {
		r.logger.Error("Failed to attach user to company",
			zap.Int64("company_id", cu.CompanyID),
			zap.Int64("user_id", cu.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to attach user: %w", err)
	}

	if cu.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// ListCompanyUsers returns active memberships of a company in id order
func (r *UserRepository) ListCompanyUsers(ctx context.Context, companyID int64) ([]*entity.CompanyUser, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT cu.id, cu.company_id, cu.user_id, cu.is_owner, cu.is_admin, cu.notifications,
			u.id, u.first_name, u.last_name, u.email
		FROM company_users cu
		LEFT JOIN users u ON u.id = cu.user_id AND u.deleted_at IS NULL
		WHERE cu.company_id = ? AND cu.deleted_at IS NULL
		ORDER BY cu.id
	`, companyID)
	if err != nil {
		r.logger.Error("Failed to list company users", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list company users: %w", err)
	}
	defer rows.Close()

	var result []*entity.CompanyUser
	for rows.Next() {
		var (
			cu                         entity.CompanyUser
			owner, admin               int
			notifications              string
			userID                     sql.NullInt64
			firstName, lastName, email sql.NullString
		)
		if err := rows.Scan(
			&cu.ID, &cu.CompanyID, &cu.UserID, &owner, &admin, &notifications,
			&userID, &firstName, &lastName, &email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company user: %w", err)
		}

		cu.IsOwner = owner != 0
		cu.IsAdmin = admin != 0
		if err := json.Unmarshal([]byte(notifications), &cu.Notifications); err != nil {
			r.logger.Warn("Ignoring malformed notification settings",
				zap.Int64("company_user_id", cu.ID),
				zap.Error(err))
		}
		if userID.Valid {
			cu.User = &entity.User{
				ID:        userID.Int64,
				FirstName: firstName.String,
				LastName:  lastName.String,
				Email:     email.String,
			}
		}
		result = append(result, &cu)
	}
	return result, rows.Err()
}

var _ port.UserRepository = (*UserRepository)(nil)
