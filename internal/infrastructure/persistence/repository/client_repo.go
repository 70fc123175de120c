package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// ClientRepository implements port.ClientRepository
type ClientRepository struct {
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(logger *zap.Logger) *ClientRepository {
	return &ClientRepository{logger: logger}
}

// Create inserts a client together with its contacts
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now()
	}

	err := withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO clients (company_id, user_id, name, currency_id, is_deleted, deleted_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, client.CompanyID, client.UserID, client.Name, client.CurrencyID,
			boolInt(client.IsDeleted), timestampValue(client.DeletedAt), client.CreatedAt)
		if err != nil {
			return err
		}
		if client.ID, err = result.LastInsertId(); err != nil {
			return err
		}

		for i := range client.Contacts {
			contact := &client.Contacts[i]
			contact.ClientID = client.ID
			result, err := tx.ExecContext(ctx, `
				INSERT INTO client_contacts (client_id, first_name, last_name, email, is_primary)
				VALUES (?, ?, ?, ?, ?)
			`, contact.ClientID, contact.FirstName, contact.LastName, contact.Email, boolInt(contact.IsPrimary))
			if err != nil {
				return err
			}
			if contact.ID, err = result.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create client", zap.String("name", client.Name), zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client with its contacts
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		client    entity.Client
		deleted   int
		deletedAt sql.NullString
	)
	err = ex.QueryRowContext(ctx, `
		SELECT id, company_id, user_id, name, currency_id, is_deleted, deleted_at, created_at
		FROM clients WHERE id = ?
	`, id).Scan(
		&client.ID,
		&client.CompanyID,
		&client.UserID,
		&client.Name,
		&client.CurrencyID,
		&deleted,
		&deletedAt,
		&client.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get client", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	client.IsDeleted = deleted != 0
	client.DeletedAt = parseTimestamp(deletedAt)

	contacts, err := loadContacts(ctx, ex, "client_id = ?", id)
	if err != nil {
		return nil, err
	}
	client.Contacts = contacts[client.ID]
	return &client, nil
}

// loadContacts returns contacts matching where, grouped by client id in id order
func loadContacts(ctx context.Context, ex executor, where string, args ...interface{}) (map[int64][]entity.ClientContact, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, client_id, first_name, last_name, email, is_primary
		FROM client_contacts WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	byClient := make(map[int64][]entity.ClientContact)
	for rows.Next() {
		var (
			c       entity.ClientContact
			primary int
		)
		if err := rows.Scan(&c.ID, &c.ClientID, &c.FirstName, &c.LastName, &c.Email, &primary); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.IsPrimary = primary != 0
		byClient[c.ClientID] = append(byClient[c.ClientID], c)
	}
	return byClient, rows.Err()
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var _ port.ClientRepository = (*ClientRepository)(nil)
