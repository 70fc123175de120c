package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/export"
)

// ErrCompanyNotFound is returned when no tenant database holds the company key
var ErrCompanyNotFound = errors.New("company not found")

// TenantDirectory lists the tenant databases and binds contexts to them
type TenantDirectory interface {
	MultiEnabled() bool
	Names() []string
	DefaultName() string
	WithTenant(ctx context.Context, name, locale string) (context.Context, error)
}

// ExportService resolves companies by key and streams their exports
type ExportService interface {
	ResolveCompany(ctx context.Context, companyKey string) (*entity.Company, error)
	ExportInvoiceItems(ctx context.Context, w io.Writer, companyKey string, columns []export.Column, format export.Format) (*entity.Company, error)
}

type exportServiceImpl struct {
	tenants   TenantDirectory
	companies port.CompanyRepository
	exporter  *export.Exporter
	logger    Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	tenants TenantDirectory,
	companies port.CompanyRepository,
	exporter *export.Exporter,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		tenants:   tenants,
		companies: companies,
		exporter:  exporter,
		logger:    logger,
	}
}

// ResolveCompany searches the tenant databases in configured order for companyKey
func (s *exportServiceImpl) ResolveCompany(ctx context.Context, companyKey string) (*entity.Company, error) {
	names := []string{s.tenants.DefaultName()}
	if s.tenants.MultiEnabled() {
		names = s.tenants.Names()
	}

	for _, name := range names {
		tctx, err := s.tenants.WithTenant(ctx, name, "")
		if err != nil {
			return nil, err
		}

		company, err := s.companies.GetByKey(tctx, companyKey)
		if errors.Is(err, port.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up company in %s: %w", name, err)
		}
		if company.DB == "" {
			company.DB = name
		}
		return company, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrCompanyNotFound, companyKey)
}

// ExportInvoiceItems writes the company's invoice item export to w.
// A nil columns slice selects export.DefaultInvoiceItemColumns.
func (s *exportServiceImpl) ExportInvoiceItems(ctx context.Context, w io.Writer, companyKey string, columns []export.Column, format export.Format) (*entity.Company, error) {
	company, err := s.ResolveCompany(ctx, companyKey)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = export.DefaultInvoiceItemColumns
	}

	if err := s.exporter.Write(ctx, w, company, columns, format); err != nil {
		s.logger.Error("Invoice item export failed", "company_key", companyKey, "error", err)
		return company, err
	}

	s.logger.Info("Invoice item export written", "company_key", companyKey, "format", string(format))
	return company, nil
}
