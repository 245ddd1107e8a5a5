// Package migrations embeds the Postgres schema applied by cmd/migrator and the store tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// InitUp is the first up migration, used to bootstrap throwaway test schemas.
const InitUp = "000001_accounts.up.sql"
