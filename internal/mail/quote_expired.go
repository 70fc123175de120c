package mail

import (
	"math"
	"strconv"
	"strings"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
)

// QuoteExpired renders the mail sent to company users when a quote lapses
func QuoteExpired(tr *i18n.Translator, quote *entity.Quote, clientName string, currency *entity.Currency) Mailable {
	replacements := map[string]string{
		"invoice": quote.Number,
		"client":  clientName,
		"amount":  FormatMoney(quote.Amount, currency),
	}
	return Mailable{
		Subject: tr.T("notification_quote_expired_subject", replacements),
		Body:    tr.T("notification_quote_expired", replacements),
	}
}

// FormatMoney renders amount with the currency symbol, thousands separators
// and the currency precision. A nil currency renders two decimals and no symbol.
func FormatMoney(amount float64, currency *entity.Currency) string {
	precision := 2
	symbol := ""
	if currency != nil {
		precision = currency.Precision
		symbol = currency.Symbol
	}

	negative := amount < 0
	formatted := strconv.FormatFloat(math.Abs(amount), 'f', precision, 64)
	whole, frac, _ := strings.Cut(formatted, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
