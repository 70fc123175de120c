// Package migrations embeds the tenant database schema.
package migrations

import "embed"

// FS holds the versioned *.sql migrations applied to every tenant database
//
//go:embed *.sql
var FS embed.FS
