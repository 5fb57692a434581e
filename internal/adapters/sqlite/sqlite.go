// Package sqlite runs the link store on an embedded SQLite file or on a
// remote libSQL (Turso) database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // remote libSQL driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tinylink/internal/adapters/sqlstore"
)

const (
	driverSQLite = "sqlite"
	driverLibSQL = "libsql"

	// Fixed-width so stored values compare correctly as text.
	timeLayout = "2006-01-02 15:04:05.000000-07:00"
)

// IsRemote reports whether dsn points at a libSQL server rather than a local file.
func IsRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "wss://") ||
		strings.HasPrefix(dsn, "https://")
}

// DialectFor returns the dialect matching the driver Open picks for dsn.
func DialectFor(dsn string) sqlstore.Dialect {
	d := sqlstore.Dialect{
		Name:              driverSQLite,
		Placeholder:       sq.Question,
		LikeOp:            "LIKE",
		Goose:             goose.DialectSQLite3,
		MigrationsDir:     "sqlite",
		IsUniqueViolation: isUniqueViolation,
		TimeArg:           formatTime,
	}

	if IsRemote(dsn) {
		d.Name = driverLibSQL
		d.Goose = database.DialectTurso
	}

	return d
}

// Open connects to dsn. Local databases get a single connection since SQLite
// serialises writers anyway and ":memory:" is per connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	driver := driverSQLite
	if IsRemote(dsn) {
		driver = driverLibSQL
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	if driver == driverSQLite {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}

	return db, nil
}

func NewStore(db *sql.DB, dsn string) *sqlstore.Store {
	return sqlstore.New(db, DialectFor(dsn))
}

func formatTime(t time.Time) any {
	return t.UTC().Format(timeLayout)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	// The libSQL client only surfaces the server message.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
