// Package postgres runs the link store on PostgreSQL through pgx.
package postgres

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"tinylink/internal/adapters/sqlstore"
)

// PostgreSQL SQLSTATE error codes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	sqlStateUniqueViolation = "23505"
)

var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Placeholder:       sq.Dollar,
	LikeOp:            "ILIKE",
	Goose:             goose.DialectPostgres,
	MigrationsDir:     "postgres",
	IsUniqueViolation: isUniqueViolation,
}

func NewStore(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, Dialect)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}

	return false
}
