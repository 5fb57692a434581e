package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	dbfs "tinylink/db"
)

// Migrate applies the embedded schema for d up to the latest version.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) (int, error) {
	migrations, err := fs.Sub(dbfs.Migrations, "migrations/"+d.MigrationsDir)
	if err != nil {
		return 0, fmt.Errorf("%s: migrations fs: %w", d.Name, err)
	}

	provider, err := goose.NewProvider(d.Goose, db, migrations)
	if err != nil {
		return 0, fmt.Errorf("%s: goose provider: %w", d.Name, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: goose up: %w", d.Name, err)
	}

	return len(results), nil
}
