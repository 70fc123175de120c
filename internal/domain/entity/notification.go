package entity

import "time"

// NotificationLog tracks one queued mail task in the tenant database
type NotificationLog struct {
	ID           int64      `json:"id"`
	TaskID       string     `json:"task_id"`
	CompanyID    int64      `json:"company_id"`
	UserID       int64      `json:"user_id"`
	Channel      string     `json:"channel"`
	Recipient    string     `json:"recipient"`
	Subject      string     `json:"subject"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
