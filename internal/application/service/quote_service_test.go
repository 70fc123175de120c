package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/i18n"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpiryWindow(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	from, to := ExpiryWindow(now, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), to)

	// 01:00 UTC is still the previous day in New York.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	from, to = ExpiryWindow(time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC), ny)
	assert.Equal(t, "2024-05-08", from.Format(entity.DateLayout))
	assert.Equal(t, "2024-05-09", to.Format(entity.DateLayout))
}

func TestInWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		due  string
		want bool
	}{
		{due: "2024-02-29", want: true},
		{due: "2024-03-01", want: false},
		{due: "2024-02-28", want: false},
		{due: "2024-03-02", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(day(tt.due), now, time.UTC))
		})
	}
}

type quoteFixture struct {
	quotes     *mockQuoteRepo
	companies  *mockCompanyRepo
	dispatcher *mockDispatcher
	service    *quoteCheckExpiredImpl
}

func newQuoteFixture(t *testing.T, names ...string) *quoteFixture {
	catalog, err := i18n.Default()
	require.NoError(t, err)

	company := &entity.Company{
		ID:         1,
		CompanyKey: "acme",
		Settings:   entity.CompanySettings{Name: "Acme", Locale: "de", CurrencyID: 3},
	}
	creator := &entity.User{ID: 10, FirstName: "Carla", Email: "carla@acme.test"}
	admin := &entity.User{ID: 20, FirstName: "Adam", Email: "adam@acme.test"}
	quiet := &entity.User{ID: 30, Email: "quiet@acme.test"}

	f := &quoteFixture{
		quotes:     &mockQuoteRepo{},
		companies:  &mockCompanyRepo{companies: map[int64]*entity.Company{1: company}},
		dispatcher: &mockDispatcher{failFor: map[int64]bool{}},
	}
	repos := QuoteRepositories{
		Quotes:    f.quotes,
		Companies: f.companies,
		Clients: &mockClientRepo{clients: map[int64]*entity.Client{
			5: {ID: 5, Name: "Globex"},
		}},
		Users: &mockUserRepo{members: map[int64][]*entity.CompanyUser{
			1: {
				{UserID: 10, User: creator, Notifications: entity.NotificationSettings{Email: []string{"quote_expired_user"}}},
				{UserID: 20, User: admin, Notifications: entity.NotificationSettings{Email: []string{"all_notifications"}}},
				{UserID: 30, User: quiet, Notifications: entity.NotificationSettings{Email: []string{"invoice_sent_all"}}},
				{UserID: 40, User: nil, Notifications: entity.NotificationSettings{Email: []string{"all_notifications"}}},
			},
		}},
		Currencies: &mockCurrencyRepo{},
	}

	svc := NewQuoteCheckExpired(&mockTenantRunner{names: names}, repos, f.dispatcher, catalog, time.UTC, &mockLogger{})
	f.service = svc.(*quoteCheckExpiredImpl)
	f.service.now = func() time.Time { return time.Date(2024, 5, 10, 5, 0, 0, 0, time.UTC) }
	return f
}

func expiredQuote(id int64) *entity.Quote {
	due := day("2024-05-09")
	return &entity.Quote{
		ID:        id,
		CompanyID: 1,
		ClientID:  5,
		UserID:    10,
		StatusID:  entity.QuoteStatusSent,
		Number:    "Q-000" + string(rune('0'+id)),
		DueDate:   &due,
		Amount:    250,
	}
}

func TestQuoteCheckExpired_Handle(t *testing.T) {
	f := newQuoteFixture(t, "db-ninja-01")

	var gotFrom, gotTo time.Time
	f.quotes.findExpiredFunc = func(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
		gotFrom, gotTo = from, to
		return []*entity.Quote{expiredQuote(1), expiredQuote(2)}, nil
	}

	require.NoError(t, f.service.Handle(context.Background()))

	assert.Equal(t, "2024-05-09", gotFrom.Format(entity.DateLayout))
	assert.Equal(t, "2024-05-10", gotTo.Format(entity.DateLayout))
	assert.Equal(t, 1, f.companies.lookups)

	// creator and admin for each of the two quotes
	require.Len(t, f.dispatcher.dispatched, 4)
	recipients := make([]string, 0, 4)
	for _, d := range f.dispatcher.dispatched {
		recipients = append(recipients, d.object.ToUser.Email)
		assert.Equal(t, "db-ninja-01", d.tenant)
		assert.Equal(t, "Acme", d.object.Settings.Name)
	}
	assert.Equal(t, []string{"carla@acme.test", "adam@acme.test", "carla@acme.test", "adam@acme.test"}, recipients)

	first := f.dispatcher.dispatched[0].object
	assert.Equal(t, "Angebot Q-0001 für Globex ist abgelaufen", first.Mailable.Subject)
	assert.Contains(t, first.Mailable.Body, "€250.00")
	assert.NotSame(t, first, f.dispatcher.dispatched[1].object)
	assert.NotSame(t, first.ToUser, f.dispatcher.dispatched[1].object.ToUser)
}

func TestQuoteCheckExpired_Handle_DispatchFailureDoesNotStopOthers(t *testing.T) {
	f := newQuoteFixture(t, "db-ninja-01")
	f.dispatcher.failFor[10] = true
	f.quotes.findExpiredFunc = func(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
		return []*entity.Quote{expiredQuote(1)}, nil
	}

	require.NoError(t, f.service.Handle(context.Background()))
	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "adam@acme.test", f.dispatcher.dispatched[0].object.ToUser.Email)
}

func TestQuoteCheckExpired_Handle_EveryTenant(t *testing.T) {
	f := newQuoteFixture(t, "db-ninja-01", "db-ninja-02")

	var visited []string
	f.quotes.findExpiredFunc = func(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
		tn, _ := tenant.FromContext(ctx)
		visited = append(visited, tn.Name)
		if tn.Name == "db-ninja-01" {
			return nil, errors.New("database is locked")
		}
		return []*entity.Quote{expiredQuote(1)}, nil
	}

	err := f.service.Handle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	assert.Equal(t, []string{"db-ninja-01", "db-ninja-02"}, visited)
	require.Len(t, f.dispatcher.dispatched, 2)
	assert.Equal(t, "db-ninja-02", f.dispatcher.dispatched[0].tenant)
}

func TestQuoteCheckExpired_Handle_MissingCompanyIsLogged(t *testing.T) {
	f := newQuoteFixture(t, "db-ninja-01")
	f.quotes.findExpiredFunc = func(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
		q := expiredQuote(1)
		q.CompanyID = 99
		return []*entity.Quote{q, expiredQuote(2)}, nil
	}

	require.NoError(t, f.service.Handle(context.Background()))
	assert.Len(t, f.dispatcher.dispatched, 2)
}
