package container

import (
	"context"
	"fmt"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/application/service"
	"github.com/garyjia/billing-ops/internal/config"
	"github.com/garyjia/billing-ops/internal/export"
	"github.com/garyjia/billing-ops/internal/i18n"
	infraLark "github.com/garyjia/billing-ops/internal/infrastructure/external/lark"
	"github.com/garyjia/billing-ops/internal/infrastructure/persistence/migrations"
	"github.com/garyjia/billing-ops/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billing-ops/internal/mail"
	"github.com/garyjia/billing-ops/internal/metrics"
	"github.com/garyjia/billing-ops/internal/payment/ach"
	"github.com/garyjia/billing-ops/internal/scheduler"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/garyjia/billing-ops/pkg/utils"
	"go.uber.org/zap"
)

// QuoteCheckExpiredJob is the scheduler name of the expired-quote job
const QuoteCheckExpiredJob = "quote_check_expired"

// ProvideTenants opens every configured tenant database and applies pending migrations
func ProvideTenants(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*tenant.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	registry, err := tenant.Open(tenant.Config{
		Dir:             cfg.Database.Dir,
		DefaultName:     cfg.Database.DefaultName,
		Names:           cfg.DatabaseNames(),
		MultiEnabled:    cfg.MultiDB.Enabled,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant databases: %w", err)
	}

	if err := registry.Migrate(ctx, migrations.FS); err != nil {
		registry.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return registry, nil
}

// ProvideRepositories creates all repositories. They resolve their database
// from the tenant carried by each call's context.
func ProvideRepositories(logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Companies:        repository.NewCompanyRepository(logger),
		Clients:          repository.NewClientRepository(logger),
		Invoices:         repository.NewInvoiceRepository(logger),
		Quotes:           repository.NewQuoteRepository(logger),
		Users:            repository.NewUserRepository(logger),
		Currencies:       repository.NewCachedCurrencyRepository(repository.NewCurrencyRepository(logger), 0, 0),
		NotificationLogs: repository.NewNotificationLogRepository(logger),
	}
}

// ProvideMailQueue creates the mail queue delivering through Lark
func ProvideMailQueue(cfg *config.Config, logs port.NotificationLogRepository, m *metrics.Metrics, logger *zap.Logger) *mail.Queue {
	sdkClient := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		Timeout:   cfg.Lark.APITimeout,
	}, logger)

	queue := mail.NewQueue(mail.QueueConfig{
		Workers:      cfg.Mail.Workers,
		QueueSize:    cfg.Mail.QueueSize,
		MaxAttempts:  cfg.Mail.MaxAttempts,
		RetryBackoff: cfg.Mail.RetryBackoff,
		SendTimeout:  cfg.Mail.SendTimeout,
		SenderName:   cfg.Mail.SenderName,
	}, infraLark.NewMailTransport(sdkClient, logger), logs, logger)
	if m != nil {
		queue.SetRecorder(m)
	}
	return queue
}

// ServiceDeps holds dependencies for creating services
type ServiceDeps struct {
	Config  *config.Config
	Tenants *tenant.Registry
	Repos   *RepositoryBundle
	Catalog *i18n.Catalog
	Mailer  mail.Dispatcher
	Logger  *zap.Logger
}

// ProvideServices creates all application services
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Tenants == nil || deps.Repos == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("tenants, repositories and catalog are required")
	}

	kvLogger := utils.NewKeyValueLogger(deps.Logger)
	exporter := export.NewExporter(deps.Tenants, deps.Repos.Invoices, deps.Repos.Currencies, deps.Catalog, deps.Logger)

	return &ServiceBundle{
		Export: service.NewExportService(deps.Tenants, deps.Repos.Companies, exporter, kvLogger),
		QuoteCheckExpired: service.NewQuoteCheckExpired(
			deps.Tenants,
			service.QuoteRepositories{
				Quotes:     deps.Repos.Quotes,
				Companies:  deps.Repos.Companies,
				Clients:    deps.Repos.Clients,
				Users:      deps.Repos.Users,
				Currencies: deps.Repos.Currencies,
			},
			deps.Mailer,
			deps.Catalog,
			deps.Config.Location(),
			kvLogger,
		),
	}, nil
}

// ProvideAuthorizer creates the bank account authorizer
func ProvideAuthorizer(cfg *config.Config, logger *zap.Logger) *ach.Authorizer {
	tokenizer := ach.NewHTTPTokenizer(ach.HTTPTokenizerConfig{
		Endpoint:           cfg.Payment.TokenizeURL,
		AuthorizationToken: cfg.Payment.AuthorizationToken,
		Timeout:            cfg.Payment.Timeout,
	})
	return ach.NewAuthorizer(tokenizer, cfg.Payment.MerchantName, logger)
}

// ProvideScheduler creates the scheduler with the expired-quote job registered
func ProvideScheduler(cfg *config.Config, quoteCheck service.QuoteCheckExpired, m *metrics.Metrics, logger *zap.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(cfg.Location(), logger)
	if m != nil {
		s.SetRecorder(m)
	}
	if err := s.Register(QuoteCheckExpiredJob, cfg.Scheduler.QuoteCheckExpired, quoteCheck.Handle); err != nil {
		return nil, err
	}
	return s, nil
}
