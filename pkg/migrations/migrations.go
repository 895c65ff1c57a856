package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry every schema migration in this package attaches
// to from its init function.
var Migrations = migrate.NewMigrations()

// BringUpToDate applies any unapplied migrations, creating the bun
// bookkeeping tables on first run. The API server calls this at startup so a
// fresh database file is usable without running the migrations CLI.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	err := migrator.Init(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}
