package sqlstore

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
)

// Dialect captures what differs between the SQL engines the store runs on.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	// LikeOp must match case-insensitively for ASCII.
	LikeOp string

	Goose         goose.Dialect
	MigrationsDir string

	IsUniqueViolation func(error) bool
	// TimeArg converts a timestamp into a bind argument. Nil passes time.Time through.
	TimeArg func(time.Time) any
}

func (d Dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d.TimeArg == nil {
		return t
	}

	return d.TimeArg(t)
}
