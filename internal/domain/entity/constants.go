package entity

// Notification channels
const (
	ChannelMail = "mail"
)

// Notification log status constants
const (
	NotificationStatusQueued = "QUEUED"
	NotificationStatusSent   = "SENT"
	NotificationStatusFailed = "FAILED"
)

// DateLayout is the storage and export layout of calendar dates
const DateLayout = "2006-01-02"
