package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/mail"
	"github.com/garyjia/billing-ops/internal/tenant"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTenantRunner struct {
	names []string
}

func (m *mockTenantRunner) Each(ctx context.Context, fn func(ctx context.Context, name string) error) error {
	var errs []error
	for _, name := range m.names {
		if err := fn(tenant.WithTenant(ctx, tenant.Tenant{Name: name}), name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type mockQuoteRepo struct {
	findExpiredFunc func(ctx context.Context, from, to time.Time) ([]*entity.Quote, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *entity.Quote) error {
	return nil
}

func (m *mockQuoteRepo) FindExpired(ctx context.Context, from, to time.Time) ([]*entity.Quote, error) {
	if m.findExpiredFunc != nil {
		return m.findExpiredFunc(ctx, from, to)
	}
	return nil, nil
}

type mockCompanyRepo struct {
	companies map[int64]*entity.Company
	lookups   int
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	return nil
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	m.lookups++
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, port.ErrNotFound
}

func (m *mockCompanyRepo) GetByKey(ctx context.Context, companyKey string) (*entity.Company, error) {
	for _, c := range m.companies {
		if c.CompanyKey == companyKey {
			return c, nil
		}
	}
	return nil, port.ErrNotFound
}

type mockClientRepo struct {
	clients map[int64]*entity.Client
}

func (m *mockClientRepo) Create(ctx context.Context, client *entity.Client) error {
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, port.ErrNotFound
}

type mockUserRepo struct {
	members map[int64][]*entity.CompanyUser
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return nil
}

func (m *mockUserRepo) AttachToCompany(ctx context.Context, cu *entity.CompanyUser) error {
	return nil
}

func (m *mockUserRepo) ListCompanyUsers(ctx context.Context, companyID int64) ([]*entity.CompanyUser, error) {
	return m.members[companyID], nil
}

type mockCurrencyRepo struct{}

func (m *mockCurrencyRepo) GetByID(ctx context.Context, id int64) (*entity.Currency, error) {
	switch id {
	case 1:
		return &entity.Currency{ID: 1, Code: "USD", Symbol: "$", Precision: 2}, nil
	case 3:
		return &entity.Currency{ID: 3, Code: "EUR", Symbol: "€", Precision: 2}, nil
	}
	return nil, port.ErrNotFound
}

func (m *mockCurrencyRepo) All(ctx context.Context) (map[int64]*entity.Currency, error) {
	return nil, nil
}

type dispatched struct {
	tenant string
	object *mail.MailerObject
}

type mockDispatcher struct {
	mu         sync.Mutex
	dispatched []dispatched
	failFor    map[int64]bool
}

func (m *mockDispatcher) Dispatch(ctx context.Context, mo *mail.MailerObject) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[mo.ToUser.ID] {
		return "", errors.New("queue full")
	}
	t, _ := tenant.FromContext(ctx)
	m.dispatched = append(m.dispatched, dispatched{tenant: t.Name, object: mo})
	return "task-" + mo.ToUser.Email, nil
}
