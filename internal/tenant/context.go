// Package tenant selects the per-company database and display locale.
//
// The selection travels in a context.Context so that concurrent requests for
// different companies never share connection or locale state.
package tenant

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoTenant is returned when an operation needs a tenant but the context has none
var ErrNoTenant = errors.New("no tenant in context")

type contextKey struct{}

// Tenant is the active database and locale for one unit of work
type Tenant struct {
	Name   string
	DB     *sql.DB
	Locale string
}

// WithTenant returns a copy of ctx carrying t
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tenant carried by ctx
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(Tenant)
	return t, ok
}

// DB returns the tenant database carried by ctx
func DB(ctx context.Context) (*sql.DB, error) {
	t, ok := FromContext(ctx)
	if !ok || t.DB == nil {
		return nil, ErrNoTenant
	}
	return t.DB, nil
}
