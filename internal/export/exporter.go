package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
	"go.uber.org/zap"
)

// TenantSelector binds a context to a tenant database and display locale
type TenantSelector interface {
	WithTenant(ctx context.Context, name, locale string) (context.Context, error)
}

// Table is the flattened export grid
type Table struct {
	Header []string
	Rows   [][]string
}

// Exporter builds invoice line-item exports for one company at a time.
// Tenant and locale are per call, so exports for different companies may run concurrently.
type Exporter struct {
	tenants    TenantSelector
	invoices   port.InvoiceRepository
	currencies port.CurrencyRepository
	catalog    *i18n.Catalog
	logger     *zap.Logger
}

// NewExporter creates a new invoice item exporter
func NewExporter(
	tenants TenantSelector,
	invoices port.InvoiceRepository,
	currencies port.CurrencyRepository,
	catalog *i18n.Catalog,
	logger *zap.Logger,
) *Exporter {
	return &Exporter{
		tenants:    tenants,
		invoices:   invoices,
		currencies: currencies,
		catalog:    catalog,
		logger:     logger,
	}
}

// Build selects the company's tenant and flattens its invoices, one row per line item
func (e *Exporter) Build(ctx context.Context, company *entity.Company, columns []Column) (*Table, error) {
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	ctx, err := e.tenants.WithTenant(ctx, company.DB, company.Locale())
	if err != nil {
		return nil, fmt.Errorf("failed to select tenant: %w", err)
	}

	currencies, err := e.currencies.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	invoices, err := e.invoices.ListForExport(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	translator := e.catalog.Translator(company.Locale(), company.Settings.Translations)
	dec := &decorator{
		translator:        translator,
		currencies:        currencies,
		companyCurrencyID: company.Settings.CurrencyID,
	}

	table := &Table{Header: make([]string, len(columns))}
	for i, col := range columns {
		table.Header[i] = translator.T(col.Name, nil)
	}

	for _, inv := range invoices {
		if inv.IsDeleted {
			continue
		}
		table.Rows = append(table.Rows, flatten(inv, columns, dec)...)
	}

	e.logger.Info("Invoice items exported",
		zap.String("company_key", company.CompanyKey),
		zap.String("db", company.DB),
		zap.Int("invoices", len(invoices)),
		zap.Int("rows", len(table.Rows)))

	return table, nil
}

// Run builds the export and returns it as a CSV document
func (e *Exporter) Run(ctx context.Context, company *entity.Company, columns []Column) (string, error) {
	var buf bytes.Buffer
	if err := e.Write(ctx, &buf, company, columns, FormatCSV); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write builds the export and writes it to w in the given format
func (e *Exporter) Write(ctx context.Context, w io.Writer, company *entity.Company, columns []Column, format Format) error {
	table, err := e.Build(ctx, company, columns)
	if err != nil {
		return err
	}
	return WriteTable(w, table, format)
}

// flatten produces one row per line item. Values are keyed by full path so
// an invoice field never shadows the line-item field of the same name.
func flatten(inv *entity.Invoice, columns []Column, dec *decorator) [][]string {
	if len(inv.LineItems) == 0 {
		return nil
	}

	invoiceValues := make(map[string]string)
	for _, col := range columns {
		if col.IsItem() {
			continue
		}
		if label, ok := dec.decorate(col.Path, inv); ok {
			invoiceValues[col.Path] = label
			continue
		}
		invoiceValues[col.Path] = formatValue(invoiceFields[col.Path](inv))
	}

	rows := make([][]string, 0, len(inv.LineItems))
	for i := range inv.LineItems {
		item := &inv.LineItems[i]
		row := make([]string, len(columns))
		for c, col := range columns {
			if col.IsItem() {
				row[c] = formatValue(itemFields[strings.TrimPrefix(col.Path, ItemPrefix)](item))
				continue
			}
			row[c] = invoiceValues[col.Path]
		}
		rows = append(rows, row)
	}
	return rows
}
