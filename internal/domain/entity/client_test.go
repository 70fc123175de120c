package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_DisplayName(t *testing.T) {
	tests := []struct {
		name   string
		client Client
		want   string
		wantOK bool
	}{
		{
			name:   "client name wins",
			client: Client{Name: "Acme GmbH", Contacts: []ClientContact{{FirstName: "Jo"}}},
			want:   "Acme GmbH",
			wantOK: true,
		},
		{
			name: "primary contact full name",
			client: Client{Contacts: []ClientContact{
				{FirstName: "First", LastName: "Contact"},
				{FirstName: "Ada", LastName: "Lovelace", IsPrimary: true},
			}},
			want:   "Ada Lovelace",
			wantOK: true,
		},
		{
			name:   "first contact when no primary",
			client: Client{Contacts: []ClientContact{{LastName: "Hopper"}}},
			want:   "Hopper",
			wantOK: true,
		},
		{
			name:   "contact email",
			client: Client{Contacts: []ClientContact{{Email: "billing@example.com"}}},
			want:   "billing@example.com",
			wantOK: true,
		},
		{
			name:   "nothing",
			client: Client{},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.client.DisplayName()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestClient_Trashed(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Client{}).Trashed())
	assert.True(t, (&Client{IsDeleted: true}).Trashed())
	assert.True(t, (&Client{DeletedAt: &now}).Trashed())
}

func TestQuote_OwnedBy(t *testing.T) {
	q := &Quote{UserID: 7, AssignedUserID: 9}
	assert.True(t, q.OwnedBy(7))
	assert.True(t, q.OwnedBy(9))
	assert.False(t, q.OwnedBy(8))
	assert.False(t, (&Quote{}).OwnedBy(0))
}

func TestInvoiceStatusKey(t *testing.T) {
	assert.Equal(t, "draft", InvoiceStatusKey(InvoiceStatusDraft))
	assert.Equal(t, "paid", InvoiceStatusKey(InvoiceStatusPaid))
	assert.Equal(t, "reversed", InvoiceStatusKey(InvoiceStatusReversed))
	assert.Equal(t, "unknown", InvoiceStatusKey(42))
}

func TestCompany_Locale(t *testing.T) {
	assert.Equal(t, "en", (&Company{}).Locale())
	assert.Equal(t, "de", (&Company{Settings: CompanySettings{Locale: "de"}}).Locale())
}
