package mail

import (
	"testing"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	eur := &entity.Currency{Code: "EUR", Symbol: "€", Precision: 2}
	jpy := &entity.Currency{Code: "JPY", Symbol: "¥", Precision: 0}

	assert.Equal(t, "€1,234,567.50", FormatMoney(1234567.5, eur))
	assert.Equal(t, "€0.00", FormatMoney(0, eur))
	assert.Equal(t, "-€12.30", FormatMoney(-12.3, eur))
	assert.Equal(t, "¥1,500", FormatMoney(1500, jpy))
	assert.Equal(t, "999.99", FormatMoney(999.99, nil))
}

func TestQuoteExpired(t *testing.T) {
	catalog, err := i18n.Default()
	require.NoError(t, err)

	quote := &entity.Quote{Number: "0042", Amount: 1200}
	currency := &entity.Currency{Symbol: "$", Precision: 2}

	m := QuoteExpired(catalog.Translator("en", nil), quote, "Globex", currency)
	assert.Equal(t, "Quote 0042 has expired for Globex", m.Subject)
	assert.Equal(t, "The following quote 0042 for client Globex and $1,200.00 has now expired.", m.Body)

	m = QuoteExpired(catalog.Translator("de", nil), quote, "Globex", currency)
	assert.Equal(t, "Angebot 0042 für Globex ist abgelaufen", m.Subject)
}
