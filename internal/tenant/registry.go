package tenant

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/garyjia/billing-ops/pkg/database"
	"go.uber.org/zap"
)

// ErrUnknownDatabase is returned for a database name the registry does not serve
var ErrUnknownDatabase = errors.New("unknown tenant database")

// Config describes the tenant databases to open
type Config struct {
	Dir             string
	DefaultName     string
	Names           []string
	MultiEnabled    bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Registry owns one connection pool per tenant database
type Registry struct {
	dbs         map[string]*database.DB
	names       []string
	defaultName string
	multi       bool
	logger      *zap.Logger
}

// Open opens every configured tenant database under cfg.Dir
func Open(cfg Config, logger *zap.Logger) (*Registry, error) {
	names := cfg.Names
	if len(names) == 0 {
		names = []string{cfg.DefaultName}
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	dbs := make([]*database.DB, 0, len(names))
	closeAll := func() {
		for _, opened := range dbs {
			opened.Close()
		}
	}
	for _, name := range names {
		db, err := database.New(database.Config{
			Name:            name,
			Path:            filepath.Join(cfg.Dir, name+".db"),
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		dbs = append(dbs, db)
	}

	registry, err := NewRegistry(cfg.DefaultName, cfg.MultiEnabled, logger, dbs...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return registry, nil
}

// NewRegistry builds a registry over already opened databases, kept in the given order
func NewRegistry(defaultName string, multi bool, logger *zap.Logger, dbs ...*database.DB) (*Registry, error) {
	r := &Registry{
		dbs:         make(map[string]*database.DB, len(dbs)),
		defaultName: defaultName,
		multi:       multi,
		logger:      logger,
	}
	for _, db := range dbs {
		if _, dup := r.dbs[db.Name()]; dup {
			return nil, fmt.Errorf("tenant database %q registered twice", db.Name())
		}
		r.dbs[db.Name()] = db
		r.names = append(r.names, db.Name())
	}
	if _, ok := r.dbs[defaultName]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownDatabase, defaultName)
	}
	return r, nil
}

// MultiEnabled reports whether jobs should iterate every tenant database
func (r *Registry) MultiEnabled() bool {
	return r.multi
}

// Names returns the tenant database names in configured order
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// DefaultName returns the database used when multi-tenancy is disabled
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// DB returns the database registered under name
func (r *Registry) DB(name string) (*database.DB, error) {
	db, ok := r.dbs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDatabase, name)
	}
	return db, nil
}

// WithTenant selects database name and locale for the work done under the returned context.
// An empty name selects the default database.
func (r *Registry) WithTenant(ctx context.Context, name, locale string) (context.Context, error) {
	if name == "" {
		name = r.defaultName
	}
	db, err := r.DB(name)
	if err != nil {
		return nil, err
	}
	return WithTenant(ctx, Tenant{Name: name, DB: db.DB, Locale: locale}), nil
}

// Each runs fn once per tenant database in configured order, or once on the
// default database when multi-tenancy is disabled. Errors are collected so
// one failing database does not stop the others.
func (r *Registry) Each(ctx context.Context, fn func(ctx context.Context, name string) error) error {
	names := []string{r.defaultName}
	if r.multi {
		names = r.names
	}

	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		tctx, err := r.WithTenant(ctx, name, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := fn(tctx, name); err != nil {
			r.logger.Error("Tenant run failed", zap.String("db", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Migrate applies the migrations in fsys to every tenant database
func (r *Registry) Migrate(ctx context.Context, fsys fs.FS) error {
	for _, name := range r.names {
		if err := database.NewMigrator(r.dbs[name], r.logger).Run(ctx, fsys); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

// Close closes every tenant database
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.names {
		if err := r.dbs[name].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
