package entity

import (
	"strings"
	"time"
)

// User is a login that can belong to several companies
type User struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// FullName returns "first last", or the e-mail when both are empty
func (u *User) FullName() string {
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

// CompanyUser links a user to a company with per-company notification settings.
// User is nil when the linked user no longer exists.
type CompanyUser struct {
	ID            int64                `json:"id"`
	CompanyID     int64                `json:"company_id"`
	UserID        int64                `json:"user_id"`
	IsOwner       bool                 `json:"is_owner"`
	IsAdmin       bool                 `json:"is_admin"`
	Notifications NotificationSettings `json:"notifications"`
	User          *User                `json:"user,omitempty"`
}

// NotificationSettings lists subscribed notification keys per channel
type NotificationSettings struct {
	Email []string `json:"email"`
}
