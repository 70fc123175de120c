// Package export flattens invoices into one row per line item and writes
// them as CSV or XLSX with localized headers.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// ItemPrefix marks a column path that resolves against the current line item
const ItemPrefix = "item."

var (
	// ErrDuplicateColumn is returned when a column name appears twice in a mapping
	ErrDuplicateColumn = errors.New("duplicate export column")
	// ErrUnknownField is returned when a column path names no invoice or line-item field
	ErrUnknownField = errors.New("unknown export field")
	// ErrNoColumns is returned for an empty mapping
	ErrNoColumns = errors.New("export mapping has no columns")
)

// Column maps an output column to a field path. Name doubles as the
// translation key of the header label.
type Column struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// IsItem reports whether the column reads from the line item
func (c Column) IsItem() bool {
	return strings.HasPrefix(c.Path, ItemPrefix)
}

// DefaultInvoiceItemColumns is the standard invoice item export layout.
// Item-level columns that share a field name with the invoice carry an item_ prefix.
var DefaultInvoiceItemColumns = []Column{
	{Name: "amount", Path: "amount"},
	{Name: "balance", Path: "balance"},
	{Name: "client", Path: "client_id"},
	{Name: "custom_surcharge1", Path: "custom_surcharge1"},
	{Name: "custom_surcharge2", Path: "custom_surcharge2"},
	{Name: "custom_surcharge3", Path: "custom_surcharge3"},
	{Name: "custom_surcharge4", Path: "custom_surcharge4"},
	{Name: "custom_value1", Path: "custom_value1"},
	{Name: "custom_value2", Path: "custom_value2"},
	{Name: "custom_value3", Path: "custom_value3"},
	{Name: "custom_value4", Path: "custom_value4"},
	{Name: "date", Path: "date"},
	{Name: "discount", Path: "discount"},
	{Name: "due_date", Path: "due_date"},
	{Name: "exchange_rate", Path: "exchange_rate"},
	{Name: "footer", Path: "footer"},
	{Name: "number", Path: "number"},
	{Name: "paid_to_date", Path: "paid_to_date"},
	{Name: "partial", Path: "partial"},
	{Name: "partial_due_date", Path: "partial_due_date"},
	{Name: "po_number", Path: "po_number"},
	{Name: "private_notes", Path: "private_notes"},
	{Name: "public_notes", Path: "public_notes"},
	{Name: "status", Path: "status_id"},
	{Name: "tax_name1", Path: "tax_name1"},
	{Name: "tax_name2", Path: "tax_name2"},
	{Name: "tax_name3", Path: "tax_name3"},
	{Name: "tax_rate1", Path: "tax_rate1"},
	{Name: "tax_rate2", Path: "tax_rate2"},
	{Name: "tax_rate3", Path: "tax_rate3"},
	{Name: "terms", Path: "terms"},
	{Name: "total_taxes", Path: "total_taxes"},
	{Name: "currency", Path: "currency_id"},
	{Name: "qty", Path: "item.quantity"},
	{Name: "unit_cost", Path: "item.cost"},
	{Name: "product_key", Path: "item.product_key"},
	{Name: "cost", Path: "item.product_cost"},
	{Name: "notes", Path: "item.notes"},
	{Name: "item_discount", Path: "item.discount"},
	{Name: "is_amount_discount", Path: "item.is_amount_discount"},
	{Name: "item_tax_rate1", Path: "item.tax_rate1"},
	{Name: "item_tax_rate2", Path: "item.tax_rate2"},
	{Name: "item_tax_rate3", Path: "item.tax_rate3"},
	{Name: "item_tax_name1", Path: "item.tax_name1"},
	{Name: "item_tax_name2", Path: "item.tax_name2"},
	{Name: "item_tax_name3", Path: "item.tax_name3"},
	{Name: "line_total", Path: "item.line_total"},
	{Name: "gross_line_total", Path: "item.gross_line_total"},
	{Name: "invoice1", Path: "item.custom_value1"},
	{Name: "invoice2", Path: "item.custom_value2"},
	{Name: "invoice3", Path: "item.custom_value3"},
	{Name: "invoice4", Path: "item.custom_value4"},
}

// ValidateColumns checks that names are unique and every path is a known field
func ValidateColumns(columns []Column) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true

		if col.IsItem() {
			if _, ok := itemFields[strings.TrimPrefix(col.Path, ItemPrefix)]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownField, col.Path)
			}
			continue
		}
		if _, ok := invoiceFields[col.Path]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, col.Path)
		}
	}
	return nil
}
