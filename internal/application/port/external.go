package port

import "context"

// MailMessage is a rendered e-mail ready for delivery
type MailMessage struct {
	To       string
	ToName   string
	FromName string
	ReplyTo  string
	Subject  string
	Body     string
}

// MailTransport delivers a single message
type MailTransport interface {
	Send(ctx context.Context, msg MailMessage) error
}
