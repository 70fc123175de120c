// Package tenanttest opens migrated tenant databases for tests.
package tenanttest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/garyjia/billing-ops/internal/infrastructure/persistence/migrations"
	"github.com/garyjia/billing-ops/internal/tenant"
	"github.com/garyjia/billing-ops/pkg/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewRegistry opens one migrated sqlite database per name in a temp dir.
// The first name is the default. Multi-tenancy is on when more than one name is given.
func NewRegistry(t *testing.T, names ...string) *tenant.Registry {
	t.Helper()
	if len(names) == 0 {
		names = []string{"db-ninja-01"}
	}

	logger := zap.NewNop()
	dir := t.TempDir()
	dbs := make([]*database.DB, 0, len(names))
	for _, name := range names {
		db, err := database.New(database.Config{
			Name: name,
			Path: filepath.Join(dir, name+".db"),
		}, logger)
		require.NoError(t, err)
		dbs = append(dbs, db)
	}

	registry, err := tenant.NewRegistry(names[0], len(names) > 1, logger, dbs...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })

	require.NoError(t, registry.Migrate(context.Background(), migrations.FS))
	return registry
}

// Context returns a context bound to the named tenant database
func Context(t *testing.T, registry *tenant.Registry, name string) context.Context {
	t.Helper()
	ctx, err := registry.WithTenant(context.Background(), name, "")
	require.NoError(t, err)
	return ctx
}
