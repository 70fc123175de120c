package export

import (
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
)

// decorator replaces identifiers with human-readable labels
type decorator struct {
	translator        *i18n.Translator
	currencies        map[int64]*entity.Currency
	companyCurrencyID int64
}

// decorate returns the display value of an invoice-level path, or ok=false
// when the path is not decorated
func (d *decorator) decorate(path string, inv *entity.Invoice) (string, bool) {
	switch path {
	case "client_id":
		return d.clientName(inv.Client), true
	case "currency_id":
		return d.currencyCode(inv.Client), true
	case "status_id":
		return d.translator.T(entity.InvoiceStatusKey(inv.StatusID), nil), true
	default:
		return "", false
	}
}

func (d *decorator) clientName(client *entity.Client) string {
	if client != nil {
		if name, ok := client.DisplayName(); ok {
			return name
		}
	}
	return d.translator.T("client", nil)
}

// currencyCode resolves the client currency, falling back to the company currency
func (d *decorator) currencyCode(client *entity.Client) string {
	id := d.companyCurrencyID
	if client != nil && client.CurrencyID != 0 {
		id = client.CurrencyID
	}
	if currency, ok := d.currencies[id]; ok {
		return currency.Code
	}
	return ""
}
