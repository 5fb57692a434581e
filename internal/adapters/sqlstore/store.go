// Package sqlstore implements links.Store on database/sql. The same statements
// serve PostgreSQL and SQLite; engine differences live in Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tinylink/internal/app/links"
	"tinylink/internal/domain"
)

type Store struct {
	db *sql.DB
	d  Dialect
	sb sq.StatementBuilderType
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		db: db,
		d:  d,
		sb: sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
	}
}

var _ links.Store = (*Store)(nil)

func (s *Store) TryCreate(ctx context.Context, in domain.NewLink) (domain.Link, error) {
	const op = "create link"

	createdAt := in.CreatedAt.UTC()

	query, args, err := s.sb.Insert(sqlTableLinks).
		Columns(sqlColCode, sqlColTargetURL, sqlColClicks, sqlColCreatedAt).
		Values(in.Code, in.TargetURL, 0, s.d.timeArg(createdAt)).
		Suffix("RETURNING " + sqlColID).
		ToSql()
	if err != nil {
		return domain.Link{}, s.buildErr(op, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if s.d.IsUniqueViolation != nil && s.d.IsUniqueViolation(err) {
			return domain.Link{}, domain.ErrCodeConflict
		}

		return domain.Link{}, s.storeErr(op, err)
	}

	return domain.Link{
		ID:        id,
		Code:      in.Code,
		TargetURL: in.TargetURL,
		CreatedAt: createdAt,
	}, nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (domain.Link, error) {
	const op = "find link by code"

	query, args, err := s.sb.Select(sqlLinksSelectCols...).
		From(sqlTableLinks + " " + sqlAliasLinks).
		Where(sq.Eq{qualify(sqlAliasLinks, sqlColCode): code}).
		ToSql()
	if err != nil {
		return domain.Link{}, s.buildErr(op, err)
	}

	link, err := scanLink(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Link{}, domain.ErrNotFound
		}

		return domain.Link{}, s.storeErr(op, err)
	}

	return link, nil
}

// ResolveAndRecord is one UPDATE ... RETURNING; the increment happens in the
// engine, so concurrent redirects never lose clicks.
func (s *Store) ResolveAndRecord(ctx context.Context, code string, at time.Time) (string, error) {
	const op = "resolve link"

	atArg := s.d.timeArg(at)

	query, args, err := s.sb.Update(sqlTableLinks).
		Set(sqlColClicks, sq.Expr(sqlColClicks+" + 1")).
		Set(sqlColLastClickedAt, sq.Expr(
			"CASE WHEN "+sqlColCreatedAt+" > ? THEN "+sqlColCreatedAt+" ELSE ? END", atArg, atArg,
		)).
		Where(sq.Eq{sqlColCode: code}).
		Suffix("RETURNING " + sqlColTargetURL).
		ToSql()
	if err != nil {
		return "", s.buildErr(op, err)
	}

	var target string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}

		return "", s.storeErr(op, err)
	}

	return target, nil
}

func (s *Store) List(ctx context.Context, filter links.ListFilter) ([]domain.Link, error) {
	const op = "list links"

	builder := s.sb.Select(sqlLinksSelectCols...).
		From(sqlTableLinks + " " + sqlAliasLinks).
		OrderBy(sqlLinksOrderBy...)

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		builder = builder.Where(sq.Or{
			s.likeExpr(qualify(sqlAliasLinks, sqlColCode), pattern),
			s.likeExpr(qualify(sqlAliasLinks, sqlColTargetURL), pattern),
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, s.buildErr(op, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.storeErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]domain.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, s.storeErr(op, err)
		}

		out = append(out, link)
	}

	if err := rows.Err(); err != nil {
		return nil, s.storeErr(op, err)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, code string) (bool, error) {
	const op = "delete link"

	query, args, err := s.sb.Delete(sqlTableLinks).
		Where(sq.Eq{sqlColCode: code}).
		ToSql()
	if err != nil {
		return false, s.buildErr(op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, s.storeErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, s.storeErr(op, err)
	}

	return n > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storeErr("ping", err)
	}

	return nil
}

func (s *Store) likeExpr(col, pattern string) sq.Sqlizer {
	return sq.Expr(col+" "+s.d.LikeOp+" ? ESCAPE '"+likeEscape+"'", pattern)
}

func (s *Store) storeErr(op string, err error) error {
	return fmt.Errorf("%s: %s: %w: %w", s.d.Name, op, domain.ErrStoreUnavailable, err)
}

func (s *Store) buildErr(op string, err error) error {
	return fmt.Errorf("%s: build %s: %w", s.d.Name, op, err)
}

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
