package entity

import "time"

// Quote status ids
const (
	QuoteStatusDraft     = 1
	QuoteStatusSent      = 2
	QuoteStatusApproved  = 3
	QuoteStatusConverted = 4
	QuoteStatusExpired   = -1
)

// Quote is an estimate sent to a client, valid until its due date
type Quote struct {
	ID             int64      `json:"id"`
	CompanyID      int64      `json:"company_id"`
	ClientID       int64      `json:"client_id"`
	UserID         int64      `json:"user_id"`
	AssignedUserID int64      `json:"assigned_user_id"`
	StatusID       int        `json:"status_id"`
	Number         string     `json:"number"`
	Date           *time.Time `json:"date"`
	DueDate        *time.Time `json:"due_date"`
	Amount         float64    `json:"amount"`
	Balance        float64    `json:"balance"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// OwnedBy reports whether userID created or is assigned the quote
func (q *Quote) OwnedBy(userID int64) bool {
	return userID != 0 && (q.UserID == userID || q.AssignedUserID == userID)
}
