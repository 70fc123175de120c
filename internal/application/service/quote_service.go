package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
	"github.com/garyjia/billing-ops/internal/mail"
	"github.com/garyjia/billing-ops/internal/notification"
)

// QuoteExpiredEvent is the notification key of the expired-quote mail
const QuoteExpiredEvent = "quote_expired"

// TenantRunner runs a function once per tenant database that a job must cover
type TenantRunner interface {
	Each(ctx context.Context, fn func(ctx context.Context, name string) error) error
}

// QuoteCheckExpired notifies company users about quotes that expired yesterday
type QuoteCheckExpired interface {
	Handle(ctx context.Context) error
}

// QuoteRepositories groups the repositories the expiry job reads from
type QuoteRepositories struct {
	Quotes     port.QuoteRepository
	Companies  port.CompanyRepository
	Clients    port.ClientRepository
	Users      port.UserRepository
	Currencies port.CurrencyRepository
}

type quoteCheckExpiredImpl struct {
	tenants  TenantRunner
	repos    QuoteRepositories
	mailer   mail.Dispatcher
	catalog  *i18n.Catalog
	location *time.Location
	now      func() time.Time
	logger   Logger
}

// NewQuoteCheckExpired creates the expired-quote job. The expiry window is
// computed in loc; nil means UTC.
func NewQuoteCheckExpired(
	tenants TenantRunner,
	repos QuoteRepositories,
	mailer mail.Dispatcher,
	catalog *i18n.Catalog,
	loc *time.Location,
	logger Logger,
) QuoteCheckExpired {
	if loc == nil {
		loc = time.UTC
	}
	return &quoteCheckExpiredImpl{
		tenants:  tenants,
		repos:    repos,
		mailer:   mailer,
		catalog:  catalog,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ExpiryWindow returns [start of yesterday, start of today) in loc
func ExpiryWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	n := now.In(loc)
	to = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	return to.AddDate(0, 0, -1), to
}

// InWindow reports whether the calendar date of due falls in the expiry window of now
func InWindow(due, now time.Time, loc *time.Location) bool {
	from, to := ExpiryWindow(now, loc)
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)
	return !day.Before(from) && day.Before(to)
}

// Handle runs the check on every tenant database. A failing database is
// logged and the remaining ones still run.
func (s *quoteCheckExpiredImpl) Handle(ctx context.Context) error {
	from, to := ExpiryWindow(s.now(), s.location)
	s.logger.Info("Checking for expired quotes",
		"from", from.Format(entity.DateLayout),
		"to", to.Format(entity.DateLayout))

	return s.tenants.Each(ctx, func(ctx context.Context, db string) error {
		return s.checkForExpiredQuotes(ctx, db, from, to)
	})
}

func (s *quoteCheckExpiredImpl) checkForExpiredQuotes(ctx context.Context, db string, from, to time.Time) error {
	quotes, err := s.repos.Quotes.FindExpired(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to find expired quotes: %w", err)
	}

	s.logger.Info("Expired quotes found", "db", db, "count", len(quotes))

	run := &expiryRun{
		companies: make(map[int64]*entity.Company),
		members:   make(map[int64][]*entity.CompanyUser),
	}
	for _, quote := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.queueExpiredQuoteNotification(ctx, run, quote); err != nil {
			s.logger.Error("Failed to notify expired quote",
				"db", db,
				"quote_id", quote.ID,
				"error", err)
		}
	}
	return nil
}

// expiryRun caches company lookups for the quotes of one tenant database
type expiryRun struct {
	companies map[int64]*entity.Company
	members   map[int64][]*entity.CompanyUser
}

func (s *quoteCheckExpiredImpl) queueExpiredQuoteNotification(ctx context.Context, run *expiryRun, quote *entity.Quote) error {
	company, members, err := s.loadCompany(ctx, run, quote.CompanyID)
	if err != nil {
		return err
	}

	client, err := s.repos.Clients.GetByID(ctx, quote.ClientID)
	if err != nil {
		return fmt.Errorf("failed to load client: %w", err)
	}

	translator := s.catalog.Translator(company.Locale(), company.Settings.Translations)
	clientName, ok := client.DisplayName()
	if !ok {
		clientName = translator.T("client", nil)
	}
	mailable := mail.QuoteExpired(translator, quote, clientName, s.currency(ctx, company, client))

	required := notification.RequiredKeys(QuoteExpiredEvent)
	for _, cu := range members {
		if cu.User == nil {
			continue
		}

		channels := notification.FindUserNotificationTypes(company, quote, cu, required)
		if !notification.HasChannel(channels, entity.ChannelMail) {
			continue
		}

		// One independent object per recipient; the dispatcher may hold on to it.
		user := *cu.User
		taskID, err := s.mailer.Dispatch(ctx, &mail.MailerObject{
			Mailable: mailable,
			Company:  company,
			Settings: company.Settings,
			ToUser:   &user,
		})
		if err != nil {
			s.logger.Error("Failed to dispatch quote expired mail",
				"quote_id", quote.ID,
				"user_id", user.ID,
				"error", err)
			continue
		}

		s.logger.Info("Quote expired mail dispatched",
			"quote_id", quote.ID,
			"user_id", user.ID,
			"task_id", taskID)
	}
	return nil
}

func (s *quoteCheckExpiredImpl) loadCompany(ctx context.Context, run *expiryRun, companyID int64) (*entity.Company, []*entity.CompanyUser, error) {
	if company, ok := run.companies[companyID]; ok {
		return company, run.members[companyID], nil
	}

	company, err := s.repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load company: %w", err)
	}
	members, err := s.repos.Users.ListCompanyUsers(ctx, companyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load company users: %w", err)
	}

	run.companies[companyID] = company
	run.members[companyID] = members
	return company, members, nil
}

// currency resolves the client currency, falling back to the company currency
func (s *quoteCheckExpiredImpl) currency(ctx context.Context, company *entity.Company, client *entity.Client) *entity.Currency {
	id := company.Settings.CurrencyID
	if client.CurrencyID != 0 {
		id = client.CurrencyID
	}
	if id == 0 {
		return nil
	}
	currency, err := s.repos.Currencies.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load currency", "currency_id", id, "error", err)
		return nil
	}
	return currency
}
