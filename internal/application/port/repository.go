package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/billing-ops/internal/domain/entity"
)

// ErrNotFound is returned by repositories when a record does not exist
var ErrNotFound = errors.New("record not found")

// Repositories resolve their database from the tenant carried by ctx.

// CompanyRepository defines persistence operations for Company
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	GetByKey(ctx context.Context, companyKey string) (*entity.Company, error)
}

// ClientRepository defines persistence operations for Client and its contacts
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
}

// InvoiceRepository defines persistence operations for Invoice
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// ListForExport returns the company's invoices that are not deleted,
	// ordered by id, with Client and its contacts loaded.
	ListForExport(ctx context.Context, companyID int64) ([]*entity.Invoice, error)
}

// QuoteRepository defines persistence operations for Quote
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	// FindExpired returns sent, live quotes with a due date in [from, to)
	// whose client is live and whose company is enabled.
	FindExpired(ctx context.Context, from, to time.Time) ([]*entity.Quote, error)
}

// UserRepository defines persistence operations for User and CompanyUser
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	AttachToCompany(ctx context.Context, cu *entity.CompanyUser) error
	// ListCompanyUsers returns the company's active memberships. User is nil
	// when the linked user is missing or deleted.
	ListCompanyUsers(ctx context.Context, companyID int64) ([]*entity.CompanyUser, error)
}

// CurrencyRepository defines read access to the currencies table
type CurrencyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Currency, error)
	All(ctx context.Context) (map[int64]*entity.Currency, error)
}

// NotificationLogRepository defines persistence operations for NotificationLog
type NotificationLogRepository interface {
	Create(ctx context.Context, log *entity.NotificationLog) error
	GetByTaskID(ctx context.Context, taskID string) (*entity.NotificationLog, error)
	UpdateStatus(ctx context.Context, taskID, status string, attempts int, errorMsg string) error
}
