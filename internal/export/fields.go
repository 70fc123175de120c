package export

import (
	"strconv"
	"time"

	"github.com/garyjia/billing-ops/internal/domain/entity"
)

type invoiceField func(inv *entity.Invoice) interface{}

type itemField func(item *entity.LineItem) interface{}

// invoiceFields are the exportable invoice attributes, keyed by path.
// currency_id reads the client currency and is decorated with its code.
var invoiceFields = map[string]invoiceField{
	"amount":               func(i *entity.Invoice) interface{} { return i.Amount },
	"balance":              func(i *entity.Invoice) interface{} { return i.Balance },
	"client_id":            func(i *entity.Invoice) interface{} { return i.ClientID },
	"currency_id":          invoiceCurrencyID,
	"custom_surcharge1":    func(i *entity.Invoice) interface{} { return i.CustomSurcharge1 },
	"custom_surcharge2":    func(i *entity.Invoice) interface{} { return i.CustomSurcharge2 },
	"custom_surcharge3":    func(i *entity.Invoice) interface{} { return i.CustomSurcharge3 },
	"custom_surcharge4":    func(i *entity.Invoice) interface{} { return i.CustomSurcharge4 },
	"custom_value1":        func(i *entity.Invoice) interface{} { return i.CustomValue1 },
	"custom_value2":        func(i *entity.Invoice) interface{} { return i.CustomValue2 },
	"custom_value3":        func(i *entity.Invoice) interface{} { return i.CustomValue3 },
	"custom_value4":        func(i *entity.Invoice) interface{} { return i.CustomValue4 },
	"date":                 func(i *entity.Invoice) interface{} { return i.Date },
	"discount":             func(i *entity.Invoice) interface{} { return i.Discount },
	"due_date":             func(i *entity.Invoice) interface{} { return i.DueDate },
	"exchange_rate":        func(i *entity.Invoice) interface{} { return i.ExchangeRate },
	"footer":               func(i *entity.Invoice) interface{} { return i.Footer },
	"is_amount_discount":   func(i *entity.Invoice) interface{} { return i.IsAmountDiscount },
	"number":               func(i *entity.Invoice) interface{} { return i.Number },
	"paid_to_date":         func(i *entity.Invoice) interface{} { return i.PaidToDate },
	"partial":              func(i *entity.Invoice) interface{} { return i.Partial },
	"partial_due_date":     func(i *entity.Invoice) interface{} { return i.PartialDueDate },
	"po_number":            func(i *entity.Invoice) interface{} { return i.PONumber },
	"private_notes":        func(i *entity.Invoice) interface{} { return i.PrivateNotes },
	"public_notes":         func(i *entity.Invoice) interface{} { return i.PublicNotes },
	"status_id":            func(i *entity.Invoice) interface{} { return i.StatusID },
	"tax_name1":            func(i *entity.Invoice) interface{} { return i.TaxName1 },
	"tax_name2":            func(i *entity.Invoice) interface{} { return i.TaxName2 },
	"tax_name3":            func(i *entity.Invoice) interface{} { return i.TaxName3 },
	"tax_rate1":            func(i *entity.Invoice) interface{} { return i.TaxRate1 },
	"tax_rate2":            func(i *entity.Invoice) interface{} { return i.TaxRate2 },
	"tax_rate3":            func(i *entity.Invoice) interface{} { return i.TaxRate3 },
	"terms":                func(i *entity.Invoice) interface{} { return i.Terms },
	"total_taxes":          func(i *entity.Invoice) interface{} { return i.TotalTaxes },
	"uses_inclusive_taxes": func(i *entity.Invoice) interface{} { return i.UsesInclusiveTaxes },
}

// itemFields are the exportable line-item attributes, keyed by path without ItemPrefix
var itemFields = map[string]itemField{
	"cost":               func(l *entity.LineItem) interface{} { return l.Cost },
	"custom_value1":      func(l *entity.LineItem) interface{} { return l.CustomValue1 },
	"custom_value2":      func(l *entity.LineItem) interface{} { return l.CustomValue2 },
	"custom_value3":      func(l *entity.LineItem) interface{} { return l.CustomValue3 },
	"custom_value4":      func(l *entity.LineItem) interface{} { return l.CustomValue4 },
	"discount":           func(l *entity.LineItem) interface{} { return l.Discount },
	"gross_line_total":   func(l *entity.LineItem) interface{} { return l.GrossLineTotal },
	"is_amount_discount": func(l *entity.LineItem) interface{} { return l.IsAmountDiscount },
	"line_total":         func(l *entity.LineItem) interface{} { return l.LineTotal },
	"notes":              func(l *entity.LineItem) interface{} { return l.Notes },
	"product_cost":       func(l *entity.LineItem) interface{} { return l.ProductCost },
	"product_key":        func(l *entity.LineItem) interface{} { return l.ProductKey },
	"quantity":           func(l *entity.LineItem) interface{} { return l.Quantity },
	"tax_name1":          func(l *entity.LineItem) interface{} { return l.TaxName1 },
	"tax_name2":          func(l *entity.LineItem) interface{} { return l.TaxName2 },
	"tax_name3":          func(l *entity.LineItem) interface{} { return l.TaxName3 },
	"tax_rate1":          func(l *entity.LineItem) interface{} { return l.TaxRate1 },
	"tax_rate2":          func(l *entity.LineItem) interface{} { return l.TaxRate2 },
	"tax_rate3":          func(l *entity.LineItem) interface{} { return l.TaxRate3 },
	"type_id":            func(l *entity.LineItem) interface{} { return l.TypeID },
}

func invoiceCurrencyID(i *entity.Invoice) interface{} {
	if i.Client == nil {
		return int64(0)
	}
	return i.Client.CurrencyID
}

// formatValue renders a field value as a cell string
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(entity.DateLayout)
	default:
		return ""
	}
}
