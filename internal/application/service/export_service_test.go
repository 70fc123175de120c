package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/export"
	"github.com/garyjia/billing-ops/internal/i18n"
	"github.com/garyjia/billing-ops/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/garyjia/billing-ops/internal/tenant/tenanttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// singleTenant hides every database but the default one
type singleTenant struct {
	*tenant.Registry
}

func (s singleTenant) MultiEnabled() bool { return false }

func seedCompany(t *testing.T, registry *tenant.Registry, db, key string) {
	t.Helper()
	ctx := tenanttest.Context(t, registry, db)
	logger := zap.NewNop()

	company := &entity.Company{
		CompanyKey: key,
		DB:         db,
		Settings:   entity.CompanySettings{Name: "Acme", Locale: "en", CurrencyID: 1},
	}
	require.NoError(t, repository.NewCompanyRepository(logger).Create(ctx, company))

	client := &entity.Client{CompanyID: company.ID, Name: "Globex", CurrencyID: 3}
	require.NoError(t, repository.NewClientRepository(logger).Create(ctx, client))

	require.NoError(t, repository.NewInvoiceRepository(logger).Create(ctx, &entity.Invoice{
		CompanyID: company.ID,
		ClientID:  client.ID,
		StatusID:  entity.InvoiceStatusPaid,
		Number:    "0001",
		LineItems: []entity.LineItem{
			{ProductKey: "hosting", Quantity: 12, Cost: 9.99},
			{ProductKey: "setup", Quantity: 1, Cost: 49},
		},
	}))
}

func newExportService(t *testing.T, tenants TenantDirectory) ExportService {
	catalog, err := i18n.Default()
	require.NoError(t, err)

	logger := zap.NewNop()
	exporter := export.NewExporter(
		tenants,
		repository.NewInvoiceRepository(logger),
		repository.NewCurrencyRepository(logger),
		catalog,
		logger,
	)
	return NewExportService(tenants, repository.NewCompanyRepository(logger), exporter, &mockLogger{})
}

func TestExportService_ExportInvoiceItems(t *testing.T) {
	registry := tenanttest.NewRegistry(t, "db-ninja-01", "db-ninja-02")
	seedCompany(t, registry, "db-ninja-02", "acme-key")
	svc := newExportService(t, registry)

	columns := []export.Column{
		{Name: "number", Path: "number"},
		{Name: "client", Path: "client_id"},
		{Name: "currency", Path: "currency_id"},
		{Name: "status", Path: "status_id"},
		{Name: "product_key", Path: "item.product_key"},
		{Name: "qty", Path: "item.quantity"},
	}

	var buf bytes.Buffer
	company, err := svc.ExportInvoiceItems(context.Background(), &buf, "acme-key", columns, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "db-ninja-02", company.DB)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Number", "Client", "Currency", "Status", "Product", "Quantity"},
		{"0001", "Globex", "EUR", "Paid", "hosting", "12"},
		{"0001", "Globex", "EUR", "Paid", "setup", "1"},
	}, records)
}

func TestExportService_ResolveCompany(t *testing.T) {
	registry := tenanttest.NewRegistry(t, "db-ninja-01", "db-ninja-02")
	seedCompany(t, registry, "db-ninja-02", "acme-key")

	t.Run("unknown key", func(t *testing.T) {
		_, err := newExportService(t, registry).ResolveCompany(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})

	t.Run("single tenant searches only the default database", func(t *testing.T) {
		_, err := newExportService(t, singleTenant{registry}).ResolveCompany(context.Background(), "acme-key")
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})

	t.Run("multi tenant finds the company", func(t *testing.T) {
		company, err := newExportService(t, registry).ResolveCompany(context.Background(), "acme-key")
		require.NoError(t, err)
		assert.Equal(t, "acme-key", company.CompanyKey)
	})
}

func TestExportService_DefaultColumns(t *testing.T) {
	registry := tenanttest.NewRegistry(t, "db-ninja-01")
	seedCompany(t, registry, "db-ninja-01", "solo")

	var buf bytes.Buffer
	_, err := newExportService(t, registry).ExportInvoiceItems(context.Background(), &buf, "solo", nil, export.FormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], len(export.DefaultInvoiceItemColumns))
}
