// Package memory keeps links in process memory. It backs development runs and
// tests; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tinylink/internal/app/links"
	"tinylink/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	byCode map[string]*domain.Link
	nextID int64
}

func NewStore() *Store {
	return &Store{byCode: make(map[string]*domain.Link)}
}

var _ links.Store = (*Store)(nil)

func (s *Store) TryCreate(ctx context.Context, in domain.NewLink) (domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return domain.Link{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[in.Code]; exists {
		return domain.Link{}, domain.ErrCodeConflict
	}

	s.nextID++
	link := &domain.Link{
		ID:        s.nextID,
		Code:      in.Code,
		TargetURL: in.TargetURL,
		CreatedAt: in.CreatedAt,
	}
	s.byCode[in.Code] = link

	return clone(link), nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return domain.Link{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.byCode[code]
	if !ok {
		return domain.Link{}, domain.ErrNotFound
	}

	return clone(link), nil
}

func (s *Store) ResolveAndRecord(ctx context.Context, code string, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.byCode[code]
	if !ok {
		return "", domain.ErrNotFound
	}

	if at.Before(link.CreatedAt) {
		at = link.CreatedAt
	}

	link.Clicks++
	link.LastClickedAt = &at

	return link.TargetURL, nil
}

func (s *Store) List(ctx context.Context, filter links.ListFilter) ([]domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(filter.Search)

	s.mu.RLock()
	out := make([]domain.Link, 0, len(s.byCode))
	for _, link := range s.byCode {
		if needle != "" && !matches(link, needle) {
			continue
		}

		out = append(out, clone(link))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s *Store) Delete(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[code]; !ok {
		return false, nil
	}

	delete(s.byCode, code)

	return true, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matches(link *domain.Link, needle string) bool {
	return strings.Contains(strings.ToLower(link.Code), needle) ||
		strings.Contains(strings.ToLower(link.TargetURL), needle)
}

func clone(link *domain.Link) domain.Link {
	out := *link
	if link.LastClickedAt != nil {
		t := *link.LastClickedAt
		out.LastClickedAt = &t
	}

	return out
}
