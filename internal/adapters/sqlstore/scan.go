package sqlstore

import (
	"fmt"
	"time"

	"tinylink/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Some drivers hand back DATETIME columns as text; both shapes are accepted.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false

		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true

		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("sqlstore: unsupported time value %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true

			return nil
		}
	}

	return fmt.Errorf("sqlstore: unparsable time %q", s)
}

func scanLink(row rowScanner) (domain.Link, error) {
	var (
		link        domain.Link
		lastClicked dbTime
		createdAt   dbTime
	)

	if err := row.Scan(
		&link.ID,
		&link.Code,
		&link.TargetURL,
		&link.Clicks,
		&lastClicked,
		&createdAt,
	); err != nil {
		return domain.Link{}, err
	}

	link.CreatedAt = createdAt.Time
	if lastClicked.Valid {
		at := lastClicked.Time
		link.LastClickedAt = &at
	}

	return link, nil
}
