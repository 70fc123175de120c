// Package container provides dependency injection and lifecycle management.
// Components are built in dependency order and torn down in reverse.
package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/application/service"
	"github.com/garyjia/billing-ops/internal/config"
	"github.com/garyjia/billing-ops/internal/i18n"
	"github.com/garyjia/billing-ops/internal/infrastructure/worker"
	httpapi "github.com/garyjia/billing-ops/internal/interfaces/http"
	"github.com/garyjia/billing-ops/internal/mail"
	"github.com/garyjia/billing-ops/internal/metrics"
	"github.com/garyjia/billing-ops/internal/payment/ach"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/garyjia/billing-ops/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Observability
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Infrastructure
	tenants      *tenant.Registry
	repositories *RepositoryBundle
	catalog      *i18n.Catalog
	mailQueue    *mail.Queue

	// Application
	services   *ServiceBundle
	authorizer *ach.Authorizer

	// Workers
	workers *worker.WorkerManager

	// Lifecycle
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access
type RepositoryBundle struct {
	Companies        port.CompanyRepository
	Clients          port.ClientRepository
	Invoices         port.InvoiceRepository
	Quotes           port.QuoteRepository
	Users            port.UserRepository
	Currencies       port.CurrencyRepository
	NotificationLogs port.NotificationLogRepository
}

// ServiceBundle groups all application services
type ServiceBundle struct {
	Export            service.ExportService
	QuoteCheckExpired service.QuoteCheckExpired
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	registry := prometheus.NewRegistry()
	return &Container{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

// Start initializes all components in dependency order:
// tenant databases, repositories and catalog, mail queue, services, workers.
// The scheduler is only started when scheduler.enabled is set.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize database: %w", err))
	}
	c.logger.Info("Tenant databases initialized", zap.Strings("databases", c.tenants.Names()))

	catalog, err := i18n.Default()
	if err != nil {
		return c.abort(fmt.Errorf("failed to load translations: %w", err))
	}
	c.catalog = catalog

	c.mailQueue = ProvideMailQueue(c.config, c.repositories.NotificationLogs, c.metrics, c.logger)

	services, err := ProvideServices(&ServiceDeps{
		Config:  c.config,
		Tenants: c.tenants,
		Repos:   c.repositories,
		Catalog: c.catalog,
		Mailer:  c.mailQueue,
		Logger:  c.logger,
	})
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize services: %w", err))
	}
	c.services = services
	c.authorizer = ProvideAuthorizer(c.config, c.logger)
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize workers: %w", err))
	}
	c.logger.Info("Workers initialized and started")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// abort releases what a failed Start already opened
func (c *Container) abort(err error) error {
	if c.tenants != nil {
		c.tenants.Close()
		c.tenants = nil
	}
	c.cancel()
	return err
}

func (c *Container) initDatabase() error {
	tenants, err := ProvideTenants(c.ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	c.tenants = tenants
	c.repositories = ProvideRepositories(c.logger)
	return nil
}

// initWorkers registers the mail queue before the scheduler so the scheduler
// stops first and the queue drains what it enqueued.
func (c *Container) initWorkers() error {
	c.workers = worker.NewWorkerManager(c.logger)
	c.workers.Register(c.mailQueue)

	if c.config.Scheduler.Enabled {
		s, err := ProvideScheduler(c.config, c.services.QuoteCheckExpired, c.metrics, c.logger)
		if err != nil {
			return err
		}
		c.workers.Register(s)
	}

	return c.workers.StartAll(c.ctx)
}

// Close gracefully shuts down all components in reverse order
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		} else {
			c.logger.Info("Workers stopped")
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	if c.tenants != nil {
		if err := c.tenants.Close(); err != nil {
			c.logger.Error("Failed to close tenant databases", zap.Error(err))
			errs = append(errs, fmt.Errorf("close databases: %w", err))
		} else {
			c.logger.Info("Tenant databases closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return errors.Join(errs...)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// HTTPServer builds the REST server over the container's services.
// Jobs it triggers are bound to the container's lifetime.
func (c *Container) HTTPServer() *httpapi.Server {
	return httpapi.NewServer(
		httpapi.ServerConfig{
			Host:         c.config.Server.Host,
			Port:         c.config.Server.Port,
			ReadTimeout:  c.config.Server.ReadTimeout,
			WriteTimeout: c.config.Server.WriteTimeout,
		},
		c.ctx,
		c.services.Export,
		c.services.QuoteCheckExpired,
		c.authorizer,
		utils.NewKeyValueLogger(c.logger),
		httpapi.WithMetrics(c.metrics, c.registry),
	)
}

// Services returns all application services
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Tenants returns the tenant database registry
func (c *Container) Tenants() *tenant.Registry {
	return c.tenants
}

// Repositories returns all repositories
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// MailQueue returns the mail queue
func (c *Container) MailQueue() *mail.Queue {
	return c.mailQueue
}

// Workers returns the worker manager
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}
