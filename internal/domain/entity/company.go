package entity

import "time"

// DefaultLocale is used when a company has no locale configured
const DefaultLocale = "en"

// Company is a tenant account. Its data lives in the database named by DB.
type Company struct {
	ID         int64           `json:"id"`
	CompanyKey string          `json:"company_key"`
	DB         string          `json:"db"`
	IsDisabled bool            `json:"is_disabled"`
	Settings   CompanySettings `json:"settings"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CompanySettings holds the per-company presentation settings.
// Translations override catalog labels, keyed without the "texts." prefix.
type CompanySettings struct {
	Name         string            `json:"name"`
	Email        string            `json:"email,omitempty"`
	Locale       string            `json:"locale,omitempty"`
	CurrencyID   int64             `json:"currency_id,omitempty"`
	Timezone     string            `json:"timezone,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// Locale returns the display locale of the company
func (c *Company) Locale() string {
	if c.Settings.Locale == "" {
		return DefaultLocale
	}
	return c.Settings.Locale
}
