package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// CompanyRepository implements port.CompanyRepository
type CompanyRepository struct {
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{logger: logger}
}

// Create inserts a company and sets its ID
func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	settings, err := json.Marshal(company.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode company settings: %w", err)
	}

	now := time.Now()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	result, err := ex.ExecContext(ctx, `
		INSERT INTO companies (company_key, db, is_disabled, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, company.CompanyKey, company.DB, boolInt(company.IsDisabled), string(settings), company.CreatedAt, company.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create company", zap.String("company_key", company.CompanyKey), zap.Error(err))
		return fmt.Errorf("failed to create company: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	company.ID = id
	return nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByKey retrieves a company by its public key
func (r *CompanyRepository) GetByKey(ctx context.Context, companyKey string) (*entity.Company, error) {
	return r.getOne(ctx, "company_key = ?", companyKey)
}

func (r *CompanyRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.Company, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		company  entity.Company
		disabled int
		settings string
	)
	err = ex.QueryRowContext(ctx, `
		SELECT id, company_key, db, is_disabled, settings, created_at, updated_at
		FROM companies WHERE `+where, arg).Scan(
		&company.ID,
		&company.CompanyKey,
		&company.DB,
		&disabled,
		&settings,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get company", zap.Any("key", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	company.IsDisabled = disabled != 0
	if err := json.Unmarshal([]byte(settings), &company.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings of company %d: %w", company.ID, err)
	}
	return &company, nil
}

var _ port.CompanyRepository = (*CompanyRepository)(nil)
