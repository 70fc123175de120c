package entity

import "time"

// Invoice status ids
const (
	InvoiceStatusDraft     = 1
	InvoiceStatusSent      = 2
	InvoiceStatusPartial   = 3
	InvoiceStatusPaid      = 4
	InvoiceStatusCancelled = 5
	InvoiceStatusReversed  = 6
)

// InvoiceStatusKey returns the translation key of an invoice status
func InvoiceStatusKey(statusID int) string {
	switch statusID {
	case InvoiceStatusDraft:
		return "draft"
	case InvoiceStatusSent:
		return "sent"
	case InvoiceStatusPartial:
		return "partial"
	case InvoiceStatusPaid:
		return "paid"
	case InvoiceStatusCancelled:
		return "cancelled"
	case InvoiceStatusReversed:
		return "reversed"
	default:
		return "unknown"
	}
}

// Invoice is a billing document with its line items in stored order.
// Client is populated by repositories that join it.
type Invoice struct {
	ID             int64      `json:"id"`
	CompanyID      int64      `json:"company_id"`
	ClientID       int64      `json:"client_id"`
	UserID         int64      `json:"user_id"`
	AssignedUserID int64      `json:"assigned_user_id"`
	StatusID       int        `json:"status_id"`
	Number         string     `json:"number"`
	PONumber       string     `json:"po_number"`
	Date           *time.Time `json:"date"`
	DueDate        *time.Time `json:"due_date"`
	PartialDueDate *time.Time `json:"partial_due_date"`

	Amount       float64 `json:"amount"`
	Balance      float64 `json:"balance"`
	PaidToDate   float64 `json:"paid_to_date"`
	Partial      float64 `json:"partial"`
	Discount     float64 `json:"discount"`
	ExchangeRate float64 `json:"exchange_rate"`
	TotalTaxes   float64 `json:"total_taxes"`

	IsAmountDiscount   bool `json:"is_amount_discount"`
	UsesInclusiveTaxes bool `json:"uses_inclusive_taxes"`

	TaxName1 string  `json:"tax_name1"`
	TaxName2 string  `json:"tax_name2"`
	TaxName3 string  `json:"tax_name3"`
	TaxRate1 float64 `json:"tax_rate1"`
	TaxRate2 float64 `json:"tax_rate2"`
	TaxRate3 float64 `json:"tax_rate3"`

	CustomSurcharge1 float64 `json:"custom_surcharge1"`
	CustomSurcharge2 float64 `json:"custom_surcharge2"`
	CustomSurcharge3 float64 `json:"custom_surcharge3"`
	CustomSurcharge4 float64 `json:"custom_surcharge4"`

	CustomValue1 string `json:"custom_value1"`
	CustomValue2 string `json:"custom_value2"`
	CustomValue3 string `json:"custom_value3"`
	CustomValue4 string `json:"custom_value4"`

	Footer       string `json:"footer"`
	Terms        string `json:"terms"`
	PublicNotes  string `json:"public_notes"`
	PrivateNotes string `json:"private_notes"`

	LineItems []LineItem `json:"line_items"`

	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Client *Client `json:"client,omitempty"`
}

// LineItem is one billable row of an invoice, stored as JSON on the invoice
type LineItem struct {
	Quantity         float64 `json:"quantity"`
	Cost             float64 `json:"cost"`
	ProductKey       string  `json:"product_key"`
	ProductCost      float64 `json:"product_cost"`
	Notes            string  `json:"notes"`
	Discount         float64 `json:"discount"`
	IsAmountDiscount bool    `json:"is_amount_discount"`
	TaxName1         string  `json:"tax_name1"`
	TaxName2         string  `json:"tax_name2"`
	TaxName3         string  `json:"tax_name3"`
	TaxRate1         float64 `json:"tax_rate1"`
	TaxRate2         float64 `json:"tax_rate2"`
	TaxRate3         float64 `json:"tax_rate3"`
	LineTotal        float64 `json:"line_total"`
	GrossLineTotal   float64 `json:"gross_line_total"`
	CustomValue1     string  `json:"custom_value1"`
	CustomValue2     string  `json:"custom_value2"`
	CustomValue3     string  `json:"custom_value3"`
	CustomValue4     string  `json:"custom_value4"`
	TypeID           string  `json:"type_id"`
}
