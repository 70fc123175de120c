package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{logger: logger}
}

const invoiceColumns = `
	i.id, i.company_id, i.client_id, i.user_id, i.assigned_user_id, i.status_id,
	i.number, i.po_number, i.date, i.due_date, i.partial_due_date,
	i.amount, i.balance, i.paid_to_date, i.partial, i.discount, i.exchange_rate, i.total_taxes,
	i.is_amount_discount, i.uses_inclusive_taxes,
	i.tax_name1, i.tax_name2, i.tax_name3, i.tax_rate1, i.tax_rate2, i.tax_rate3,
	i.custom_surcharge1, i.custom_surcharge2, i.custom_surcharge3, i.custom_surcharge4,
	i.custom_value1, i.custom_value2, i.custom_value3, i.custom_value4,
	i.footer, i.terms, i.public_notes, i.private_notes, i.line_items,
	i.is_deleted, i.deleted_at, i.created_at, i.updated_at`

// Create inserts an invoice with its line items and sets its ID
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	ex, err := getExecutor(ctx)
	if err != nil {
		return err
	}

	items := inv.LineItems
	if items == nil {
		items = []entity.LineItem{}
	}
	lineItems, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	result, err := ex.ExecContext(ctx, `
		INSERT INTO invoices (
			company_id, client_id, user_id, assigned_user_id, status_id,
			number, po_number, date, due_date, partial_due_date,
			amount, balance, paid_to_date, partial, discount, exchange_rate, total_taxes,
			is_amount_discount, uses_inclusive_taxes,
			tax_name1, tax_name2, tax_name3, tax_rate1, tax_rate2, tax_rate3,
			custom_surcharge1, custom_surcharge2, custom_surcharge3, custom_surcharge4,
			custom_value1, custom_value2, custom_value3, custom_value4,
			footer, terms, public_notes, private_notes, line_items,
			is_deleted, deleted_at, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?
		)`,
		inv.CompanyID, inv.ClientID, inv.UserID, inv.AssignedUserID, inv.StatusID,
		inv.Number, inv.PONumber, dateValue(inv.Date), dateValue(inv.DueDate), dateValue(inv.PartialDueDate),
		inv.Amount, inv.Balance, inv.PaidToDate, inv.Partial, inv.Discount, inv.ExchangeRate, inv.TotalTaxes,
		boolInt(inv.IsAmountDiscount), boolInt(inv.UsesInclusiveTaxes),
		inv.TaxName1, inv.TaxName2, inv.TaxName3, inv.TaxRate1, inv.TaxRate2, inv.TaxRate3,
		inv.CustomSurcharge1, inv.CustomSurcharge2, inv.CustomSurcharge3, inv.CustomSurcharge4,
		inv.CustomValue1, inv.CustomValue2, inv.CustomValue3, inv.CustomValue4,
		inv.Footer, inv.Terms, inv.PublicNotes, inv.PrivateNotes, string(lineItems),
		boolInt(inv.IsDeleted), timestampValue(inv.DeletedAt), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("number", inv.Number), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inv.ID = id
	return nil
}

// ListForExport returns the company's live invoices in id order with clients and contacts
func (r *InvoiceRepository) ListForExport(ctx context.Context, companyID int64) ([]*entity.Invoice, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT `+invoiceColumns+`,
			c.id, c.company_id, c.user_id, c.name, c.currency_id, c.is_deleted, c.deleted_at, c.created_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.company_id = ? AND i.is_deleted = 0 AND i.deleted_at IS NULL
		ORDER BY i.id
	`, companyID)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var (
		invoices []*entity.Invoice
		clients  = make(map[int64]*entity.Client)
	)
	for rows.Next() {
		inv, client, err := scanInvoiceWithClient(rows)
		if err != nil {
			return nil, err
		}
		if known, ok := clients[client.ID]; ok {
			client = known
		} else {
			clients[client.ID] = client
		}
		inv.Client = client
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	if len(clients) == 0 {
		return invoices, nil
	}

	ids := make([]interface{}, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	contacts, err := loadContacts(ctx, ex, "client_id IN ("+placeholders(len(ids))+")", ids...)
	if err != nil {
		return nil, err
	}
	for id, client := range clients {
		client.Contacts = contacts[id]
	}

	return invoices, nil
}

func scanInvoiceWithClient(rows *sql.Rows) (*entity.Invoice, *entity.Client, error) {
	var (
		inv                                  entity.Invoice
		client                               entity.Client
		date, dueDate, partialDueDate        sql.NullString
		isAmountDiscount, inclusive, deleted int
		deletedAt, lineItems                 sql.NullString
		clientDeleted                        int
		clientDeletedAt                      sql.NullString
	)

	err := rows.Scan(
		&inv.ID, &inv.CompanyID, &inv.ClientID, &inv.UserID, &inv.AssignedUserID, &inv.StatusID,
		&inv.Number, &inv.PONumber, &date, &dueDate, &partialDueDate,
		&inv.Amount, &inv.Balance, &inv.PaidToDate, &inv.Partial, &inv.Discount, &inv.ExchangeRate, &inv.TotalTaxes,
		&isAmountDiscount, &inclusive,
		&inv.TaxName1, &inv.TaxName2, &inv.TaxName3, &inv.TaxRate1, &inv.TaxRate2, &inv.TaxRate3,
		&inv.CustomSurcharge1, &inv.CustomSurcharge2, &inv.CustomSurcharge3, &inv.CustomSurcharge4,
		&inv.CustomValue1, &inv.CustomValue2, &inv.CustomValue3, &inv.CustomValue4,
		&inv.Footer, &inv.Terms, &inv.PublicNotes, &inv.PrivateNotes, &lineItems,
		&deleted, &deletedAt, &inv.CreatedAt, &inv.UpdatedAt,
		&client.ID, &client.CompanyID, &client.UserID, &client.Name, &client.CurrencyID,
		&clientDeleted, &clientDeletedAt, &client.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	inv.Date = parseDate(date)
	inv.DueDate = parseDate(dueDate)
	inv.PartialDueDate = parseDate(partialDueDate)
	inv.IsAmountDiscount = isAmountDiscount != 0
	inv.UsesInclusiveTaxes = inclusive != 0
	inv.IsDeleted = deleted != 0
	inv.DeletedAt = parseTimestamp(deletedAt)

	if lineItems.Valid && lineItems.String != "" {
		if err := json.Unmarshal([]byte(lineItems.String), &inv.LineItems); err != nil {
			return nil, nil, fmt.Errorf("failed to decode line items of invoice %d: %w", inv.ID, err)
		}
	}

	client.IsDeleted = clientDeleted != 0
	client.DeletedAt = parseTimestamp(clientDeletedAt)

	return &inv, &client, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
