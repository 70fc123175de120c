package entity

import (
	"strings"
	"time"
)

// Client is a customer of a company
type Client struct {
	ID         int64           `json:"id"`
	CompanyID  int64           `json:"company_id"`
	UserID     int64           `json:"user_id"`
	Name       string          `json:"name"`
	CurrencyID int64           `json:"currency_id"` // 0 means the company currency
	IsDeleted  bool            `json:"is_deleted"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
	Contacts   []ClientContact `json:"contacts,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ClientContact is a person reachable at a client
type ClientContact struct {
	ID        int64  `json:"id"`
	ClientID  int64  `json:"client_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
}

// PrimaryContact returns the primary contact, else the first one, else nil
func (c *Client) PrimaryContact() *ClientContact {
	for i := range c.Contacts {
		if c.Contacts[i].IsPrimary {
			return &c.Contacts[i]
		}
	}
	if len(c.Contacts) > 0 {
		return &c.Contacts[0]
	}
	return nil
}

// DisplayName resolves the human-readable client name: the client name,
// then the primary contact's full name, then its e-mail. ok is false when
// none of these is set.
func (c *Client) DisplayName() (name string, ok bool) {
	if c.Name != "" {
		return c.Name, true
	}

	contact := c.PrimaryContact()
	if contact == nil {
		return "", false
	}
	if full := strings.TrimSpace(contact.FirstName + " " + contact.LastName); full != "" {
		return full, true
	}
	if contact.Email != "" {
		return contact.Email, true
	}
	return "", false
}

// Trashed reports whether the client is soft or hard deleted
func (c *Client) Trashed() bool {
	return c.IsDeleted || c.DeletedAt != nil
}
