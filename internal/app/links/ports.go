package links

import (
	"context"
	"time"

	"tinylink/internal/domain"
)

// Store is the durable code → link mapping. Every method is a single atomic
// unit with respect to other callers acting on the same code.
type Store interface {
	// TryCreate inserts the link iff no link with the same code exists.
	// It returns domain.ErrCodeConflict otherwise.
	TryCreate(ctx context.Context, link domain.NewLink) (domain.Link, error)
	FindByCode(ctx context.Context, code string) (domain.Link, error)
	// ResolveAndRecord increments clicks, stamps lastClickedAt with at and
	// returns the stored target URL, or domain.ErrNotFound.
	ResolveAndRecord(ctx context.Context, code string, at time.Time) (string, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Link, error)
	// Delete reports whether a link existed and was removed.
	Delete(ctx context.Context, code string) (bool, error)
	Ping(ctx context.Context) error
}

// ListFilter narrows List. Zero value lists everything.
type ListFilter struct {
	// Search is a case-insensitive substring of the code or the target URL.
	Search string
}

// CodeGenerator proposes candidate short codes.
type CodeGenerator interface {
	Generate() (string, error)
}
