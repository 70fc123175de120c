package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/tenant"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// getExecutor returns the tenant database selected in ctx
func getExecutor(ctx context.Context) (executor, error) {
	db, err := tenant.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// withTx runs fn in a transaction on the tenant database selected in ctx
func withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := tenant.DB(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// dateValue converts an optional calendar date to its stored form
func dateValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(entity.DateLayout)
}

// timestampValue converts an optional instant to its stored form
func timestampValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseDate reads a stored calendar date. Unparseable values read as nil.
func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	layout := entity.DateLayout
	if len(s.String) > len(layout) {
		s.String = s.String[:len(layout)]
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// parseTimestamp reads a stored RFC 3339 instant
func parseTimestamp(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
