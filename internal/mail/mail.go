// Package mail queues notification mails and delivers them in the background.
package mail

import (
	"context"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
)

// Mailable is a rendered message body
type Mailable struct {
	Subject string
	Body    string
}

// MailerObject addresses a mailable to one user of a company
type MailerObject struct {
	Mailable Mailable
	Company  *entity.Company
	Settings entity.CompanySettings
	ToUser   *entity.User
}

// Message builds the transport message. fromName is used when the company has no name.
func (m *MailerObject) Message(fromName string) port.MailMessage {
	msg := port.MailMessage{
		Subject:  m.Mailable.Subject,
		Body:     m.Mailable.Body,
		FromName: fromName,
		ReplyTo:  m.Settings.Email,
	}
	if m.Settings.Name != "" {
		msg.FromName = m.Settings.Name
	}
	if m.ToUser != nil {
		msg.To = m.ToUser.Email
		msg.ToName = m.ToUser.FullName()
	}
	return msg
}

// Dispatcher hands a mail to a background task and returns the task id.
// Delivery happens later; a nil error only means the task was accepted.
type Dispatcher interface {
	Dispatch(ctx context.Context, mo *MailerObject) (string, error)
}
